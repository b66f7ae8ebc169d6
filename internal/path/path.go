// Package path models the closed spline the camera flies along.
//
// A Path is immutable once built. It is sampled by a normalized parameter on
// the circle: u and u+1 name the same point.
package path

import (
	"errors"
	"math"
	"sort"

	"github.com/goki/mat32"
)

// ErrTooFewPoints is returned when a closed Catmull-Rom curve cannot be formed.
var ErrTooFewPoints = errors.New("path: need at least 4 control points")

// CurveType selects the Catmull-Rom parameterization.
type CurveType int

const (
	Centripetal CurveType = iota
	Chordal
	Uniform
)

// ArcDivisions is the resolution of the arc-length lookup table.
const ArcDivisions = 200

// DefaultControlPoints is the fixed loop the tunnel is built around.
var DefaultControlPoints = []mat32.Vec3{
	{X: 6, Y: 0, Z: 0},
	{X: 6.235, Y: 1.212, Z: 3.6},
	{X: 3, Y: 1.212, Z: 5.196},
	{X: 0, Y: 0, Z: 4.8},
	{X: -3, Y: -1.212, Z: 5.196},
	{X: -6.235, Y: -1.212, Z: 3.6},
	{X: -6, Y: 0, Z: 0},
	{X: -4.157, Y: 1.212, Z: -2.4},
	{X: -3, Y: 1.212, Z: -5.196},
	{X: 0, Y: 0, Z: -7.2},
	{X: 3, Y: -1.212, Z: -5.196},
	{X: 4.157, Y: -1.212, Z: -2.4},
}

type vec [3]float64

// Path is a closed Catmull-Rom curve through an ordered set of control points.
type Path struct {
	pts     []vec
	curve   CurveType
	tension float64
	arc     []float64 // cumulative arc length at t = i/ArcDivisions
}

// Option configures a Path at construction.
type Option func(*Path)

// WithCurve selects the curve parameterization.
func WithCurve(c CurveType) Option {
	return func(p *Path) { p.curve = c }
}

// WithTension sets the tension used by the Uniform curve type.
func WithTension(t float64) Option {
	return func(p *Path) { p.tension = t }
}

// New builds a closed path through points. The slice is copied.
func New(points []mat32.Vec3, opts ...Option) (*Path, error) {
	if len(points) < 4 {
		return nil, ErrTooFewPoints
	}
	p := &Path{
		pts:     make([]vec, len(points)),
		curve:   Centripetal,
		tension: 0.5,
	}
	for i, v := range points {
		p.pts[i] = vec{float64(v.X), float64(v.Y), float64(v.Z)}
	}
	for _, o := range opts {
		o(p)
	}
	p.buildArcTable()
	return p, nil
}

// Default returns the path through DefaultControlPoints.
func Default() *Path {
	p, err := New(DefaultControlPoints)
	if err != nil {
		panic(err)
	}
	return p
}

// Wrap maps any u onto [0,1).
func Wrap(u float64) float64 {
	w := u - math.Floor(u)
	if w >= 1 {
		return 0
	}
	return w
}

// PointAt returns the point at arc-length fraction u (taken modulo 1).
func (p *Path) PointAt(u float64) mat32.Vec3 {
	return toVec3(p.eval(p.uToT(Wrap(u))))
}

// PointAtT returns the point at raw spline parameter t (taken modulo 1).
func (p *Path) PointAtT(t float64) mat32.Vec3 {
	return toVec3(p.eval(Wrap(t)))
}

// TangentAt returns the unit tangent at arc-length fraction u.
func (p *Path) TangentAt(u float64) mat32.Vec3 {
	const delta = 1e-4
	a := p.eval(p.uToT(Wrap(u - delta)))
	b := p.eval(p.uToT(Wrap(u + delta)))
	d := vec{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	l := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	if l == 0 {
		return mat32.NewVec3(0, 0, 1)
	}
	return mat32.NewVec3(float32(d[0]/l), float32(d[1]/l), float32(d[2]/l))
}

// Points returns n+1 samples evenly spaced by arc length; the last sample
// repeats the first.
func (p *Path) Points(n int) []mat32.Vec3 {
	if n < 1 {
		n = 1
	}
	out := make([]mat32.Vec3, n+1)
	for i := 0; i < n; i++ {
		out[i] = p.PointAt(float64(i) / float64(n))
	}
	out[n] = out[0]
	return out
}

// Length is the approximate total arc length of the loop.
func (p *Path) Length() float64 {
	return p.arc[len(p.arc)-1]
}

// ControlPoints returns a copy of the control points.
func (p *Path) ControlPoints() []mat32.Vec3 {
	out := make([]mat32.Vec3, len(p.pts))
	for i, v := range p.pts {
		out[i] = toVec3(v)
	}
	return out
}

// Bounds is the axis-aligned box around the control points.
func (p *Path) Bounds() (min, max mat32.Vec3) {
	lo, hi := p.pts[0], p.pts[0]
	for _, v := range p.pts[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], v[k])
			hi[k] = math.Max(hi[k], v[k])
		}
	}
	return toVec3(lo), toVec3(hi)
}

func (p *Path) buildArcTable() {
	p.arc = make([]float64, ArcDivisions+1)
	prev := p.eval(0)
	for i := 1; i <= ArcDivisions; i++ {
		cur := p.eval(Wrap(float64(i) / ArcDivisions))
		p.arc[i] = p.arc[i-1] + dist(prev, cur)
		prev = cur
	}
}

// uToT maps an arc-length fraction onto the spline parameter.
func (p *Path) uToT(u float64) float64 {
	total := p.Length()
	if total == 0 {
		return u
	}
	target := u * total
	i := sort.SearchFloat64s(p.arc, target)
	if i <= 0 {
		return 0
	}
	if i > ArcDivisions {
		return 1
	}
	before, after := p.arc[i-1], p.arc[i]
	seg := after - before
	frac := 0.0
	if seg > 0 {
		frac = (target - before) / seg
	}
	return Wrap((float64(i-1) + frac) / ArcDivisions)
}

// eval evaluates the spline at t in [0,1).
func (p *Path) eval(t float64) vec {
	n := len(p.pts)
	s := float64(n) * t
	seg := int(math.Floor(s))
	w := s - float64(seg)
	seg = ((seg % n) + n) % n

	p0 := p.pts[(seg-1+n)%n]
	p1 := p.pts[seg]
	p2 := p.pts[(seg+1)%n]
	p3 := p.pts[(seg+2)%n]

	var out vec
	if p.curve == Uniform {
		for k := 0; k < 3; k++ {
			out[k] = hermite(p1[k], p2[k], p.tension*(p2[k]-p0[k]), p.tension*(p3[k]-p1[k]), w)
		}
		return out
	}

	pow := 0.25
	if p.curve == Chordal {
		pow = 0.5
	}
	dt0 := math.Pow(distSq(p0, p1), pow)
	dt1 := math.Pow(distSq(p1, p2), pow)
	dt2 := math.Pow(distSq(p2, p3), pow)
	if dt1 < 1e-4 {
		dt1 = 1
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}
	for k := 0; k < 3; k++ {
		x0, x1, x2, x3 := p0[k], p1[k], p2[k], p3[k]
		t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
		t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
		out[k] = hermite(x1, x2, t1*dt1, t2*dt1, w)
	}
	return out
}

// hermite evaluates the cubic with end values a, b and end tangents ta, tb.
func hermite(a, b, ta, tb, w float64) float64 {
	c2 := -3*a + 3*b - 2*ta - tb
	c3 := 2*a - 2*b + ta + tb
	return a + ta*w + c2*w*w + c3*w*w*w
}

func distSq(a, b vec) float64 {
	dx, dy, dz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
	return dx*dx + dy*dy + dz*dz
}

func dist(a, b vec) float64 { return math.Sqrt(distSq(a, b)) }

func toVec3(v vec) mat32.Vec3 {
	return mat32.NewVec3(float32(v[0]), float32(v[1]), float32(v[2]))
}
