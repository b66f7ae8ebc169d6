package scene

import "github.com/goki/mat32"

// boxCorners indexes the 8 corners as bits: x=1, y=2, z=4.
func boxCorners(size float32) [8]mat32.Vec3 {
	h := size / 2
	var c [8]mat32.Vec3
	for i := range c {
		c[i] = mat32.NewVec3(-h, -h, -h)
		if i&1 != 0 {
			c[i].X = h
		}
		if i&2 != 0 {
			c[i].Y = h
		}
		if i&4 != 0 {
			c[i].Z = h
		}
	}
	return c
}

var cubeEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along x
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along z
}

// one diagonal per face, as a two-triangle split would draw it
var faceDiagonals = [6][2]int{
	{0, 3}, {4, 7}, // z faces
	{0, 5}, {2, 7}, // y faces
	{0, 6}, {1, 7}, // x faces
}

// BoxEdges returns the 12 outline edges of an axis-aligned cube centered on
// the origin.
func BoxEdges(size float32) []Segment {
	c := boxCorners(size)
	out := make([]Segment, 0, len(cubeEdges))
	for _, e := range cubeEdges {
		out = append(out, Segment{A: c[e[0]], B: c[e[1]]})
	}
	return out
}

// BoxWireframe is the triangulated wireframe: the outline plus one diagonal
// on each face.
func BoxWireframe(size float32) []Segment {
	c := boxCorners(size)
	out := BoxEdges(size)
	for _, d := range faceDiagonals {
		out = append(out, Segment{A: c[d[0]], B: c[d[1]]})
	}
	return out
}
