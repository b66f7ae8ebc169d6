package scene

import "github.com/goki/mat32"

// Segment is a single line segment in object-local space.
type Segment struct {
	A, B mat32.Vec3
}

// Handle identifies an object registered with a Graph.
type Handle int

// Object is a drawable made of line segments with a transform and a color.
type Object struct {
	Name     string
	Segments []Segment // shared between objects of the same shape
	Pos      mat32.Vec3
	Rot      mat32.Vec3 // Euler XYZ, radians
	Hue      float64
	Sat      float64
	Light    float64
	Opacity  float32
	Visible  bool
	Identity bool // Segments are already in world space
}

// Graph holds every drawable in the scene. Objects are only ever added.
type Graph struct {
	objs []*Object
}

// Add registers o and returns its handle.
func (g *Graph) Add(o *Object) Handle {
	g.objs = append(g.objs, o)
	return Handle(len(g.objs) - 1)
}

// Get returns the object for h, or nil for an unknown handle.
func (g *Graph) Get(h Handle) *Object {
	if h < 0 || int(h) >= len(g.objs) {
		return nil
	}
	return g.objs[h]
}

func (g *Graph) Len() int { return len(g.objs) }

// Each visits objects in registration order.
func (g *Graph) Each(f func(h Handle, o *Object)) {
	for i, o := range g.objs {
		f(Handle(i), o)
	}
}

// WorldSegments appends o's segments, transformed to world space, to dst.
func (o *Object) WorldSegments(dst []Segment) []Segment {
	if o.Identity {
		return append(dst, o.Segments...)
	}
	q := mat32.NewQuatEuler(o.Rot)
	for _, s := range o.Segments {
		dst = append(dst, Segment{
			A: s.A.MulQuat(q).Add(o.Pos),
			B: s.B.MulQuat(q).Add(o.Pos),
		})
	}
	return dst
}
