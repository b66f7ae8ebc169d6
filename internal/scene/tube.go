package scene

import (
	"math"

	"github.com/goki/mat32"

	"github.com/coreman2200/funtimes-wormhole/internal/path"
)

// Tube is a closed circular sweep along a path, kept as rings of vertices.
// Rings[i][j] is the j-th radial vertex at path fraction i/Tubular.
type Tube struct {
	Radius  float32
	Radial  int
	Tubular int
	Rings   [][]mat32.Vec3
}

// BuildTube sweeps a circle of radius r along p. Frames come from parallel
// transport, with the accumulated twist spread evenly so the seam matches.
func BuildTube(p *path.Path, r float32, tubular, radial int) *Tube {
	if tubular < 3 {
		tubular = 3
	}
	if radial < 3 {
		radial = 3
	}
	_, nrm, bin := frames(p, tubular)

	t := &Tube{Radius: r, Radial: radial, Tubular: tubular, Rings: make([][]mat32.Vec3, tubular)}
	for i := 0; i < tubular; i++ {
		c := p.PointAt(float64(i) / float64(tubular))
		ring := make([]mat32.Vec3, radial)
		for j := 0; j < radial; j++ {
			th := float64(j) / float64(radial) * 2 * math.Pi
			sin, cos := float32(math.Sin(th)), float32(-math.Cos(th))
			dir := nrm[i].MulScalar(cos).Add(bin[i].MulScalar(sin)).Normal()
			ring[j] = c.Add(dir.MulScalar(r))
		}
		t.Rings[i] = ring
	}
	return t
}

// CreaseDeg is the smallest angle between neighboring faces that still
// draws the ring edge between them. Straight stretches of tube show rails
// only.
const CreaseDeg = 0.2

// Edges returns the outline: one rail per radial vertex, and the ring edges
// where the tube bends by more than CreaseDeg. Both wrap. Rails always
// separate faces 360/Radial degrees apart, so they are never dropped.
func (t *Tube) Edges() []Segment {
	out := make([]Segment, 0, 2*t.Tubular*t.Radial)
	for i, ring := range t.Rings {
		next := t.Rings[(i+1)%t.Tubular]
		for j := range ring {
			if t.creased(i, j) {
				out = append(out, Segment{A: ring[j], B: ring[(j+1)%t.Radial]})
			}
			out = append(out, Segment{A: ring[j], B: next[j]})
		}
	}
	return out
}

// creased reports whether the faces before and after ring edge (i, j)
// meet at more than CreaseDeg.
func (t *Tube) creased(i, j int) bool {
	n0, ok0 := t.faceNormal((i+t.Tubular-1)%t.Tubular, j)
	n1, ok1 := t.faceNormal(i, j)
	if !ok0 || !ok1 {
		return true
	}
	return n0.Dot(n1) < float32(math.Cos(CreaseDeg*math.Pi/180))
}

// faceNormal is the normal of the quad from ring i to ring i+1 between
// radial vertices j and j+1.
func (t *Tube) faceNormal(i, j int) (mat32.Vec3, bool) {
	a := t.Rings[i]
	b := t.Rings[(i+1)%t.Tubular]
	along := b[j].Sub(a[j])
	around := a[(j+1)%t.Radial].Sub(a[j])
	n := along.Cross(around)
	l := n.Length()
	if l < 1e-12 {
		return mat32.Vec3{}, false
	}
	return n.DivScalar(l), true
}

// frames computes tangent/normal/binormal triples at n+1 evenly spaced
// fractions of p (the last repeats the first).
func frames(p *path.Path, n int) (tan, nrm, bin []mat32.Vec3) {
	tan = make([]mat32.Vec3, n+1)
	nrm = make([]mat32.Vec3, n+1)
	bin = make([]mat32.Vec3, n+1)
	for i := 0; i <= n; i++ {
		tan[i] = p.TangentAt(float64(i) / float64(n))
	}

	// seed normal: perpendicular to the tangent, built off its smallest axis
	t0 := tan[0]
	ax, ay, az := abs32(t0.X), abs32(t0.Y), abs32(t0.Z)
	axis := mat32.NewVec3(0, 0, 1)
	switch {
	case ax <= ay && ax <= az:
		axis = mat32.NewVec3(1, 0, 0)
	case ay <= az:
		axis = mat32.NewVec3(0, 1, 0)
	}
	v := t0.Cross(axis).Normal()
	nrm[0] = t0.Cross(v)
	bin[0] = t0.Cross(nrm[0])

	for i := 1; i <= n; i++ {
		nrm[i] = nrm[i-1]
		v := tan[i-1].Cross(tan[i])
		if v.Length() > 1e-6 {
			v = v.Normal()
			th := float32(math.Acos(clampUnit(float64(tan[i-1].Dot(tan[i])))))
			nrm[i] = nrm[i].MulQuat(mat32.NewQuatAxisAngle(v, th))
		}
		bin[i] = tan[i].Cross(nrm[i])
	}

	// closure: untwist so the last frame lands on the first
	th := math.Acos(clampUnit(float64(nrm[0].Dot(nrm[n])))) / float64(n)
	if tan[0].Dot(nrm[0].Cross(nrm[n])) > 0 {
		th = -th
	}
	for i := 1; i <= n; i++ {
		nrm[i] = nrm[i].MulQuat(mat32.NewQuatAxisAngle(tan[i], float32(th*float64(i))))
		bin[i] = tan[i].Cross(nrm[i])
	}
	return tan, nrm, bin
}

func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
