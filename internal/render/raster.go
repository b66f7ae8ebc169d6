package render

import (
	"math"

	"github.com/goki/mat32"
)

// Projector maps world points to the screen. camera.Camera implements it.
type Projector interface {
	// Project returns normalized device coordinates and view depth; ok is
	// false behind the near plane.
	Project(p mat32.Vec3) (x, y, depth float32, ok bool)
	// ViewDepth is the signed distance in front of the camera.
	ViewDepth(p mat32.Vec3) float32
}

// Fog is exponential-squared fog: factor = 1 - exp(-(Density*d)^2).
type Fog struct {
	Color   Color
	Density float32
}

// Factor returns how much of the fog color replaces a surface at depth d.
func (f Fog) Factor(d float32) float32 {
	if f.Density <= 0 || d <= 0 {
		return 0
	}
	x := float64(f.Density * d)
	return clamp01(float32(1 - math.Exp(-x*x)))
}

// Apply blends c toward the fog color for depth d.
func (f Fog) Apply(c Color, d float32) Color {
	return c.Lerp(f.Color, f.Factor(d))
}

// DrawLine draws the world-space segment a-b into dst, additively, with
// colors ca and cb at the ends. The part behind near is clipped off.
func DrawLine(dst *Frame, cam Projector, near float32, a, b mat32.Vec3, ca, cb Color, fog Fog) {
	da, db := cam.ViewDepth(a), cam.ViewDepth(b)
	if da < near && db < near {
		return
	}
	if da < near || db < near {
		t := min(1, (near+1e-4-da)/(db-da))
		p := a.Add(b.Sub(a).MulScalar(t))
		c := ca.Lerp(cb, t)
		if da < near {
			a, ca = p, c
		} else {
			b, cb = p, c
		}
	}

	ax, ay, za, ok1 := cam.Project(a)
	bx, by, zb, ok2 := cam.Project(b)
	if !ok1 || !ok2 {
		return
	}
	ca = fog.Apply(ca, za)
	cb = fog.Apply(cb, zb)

	w, h := float32(dst.W), float32(dst.H)
	x0, y0 := (ax+1)*0.5*w, (1-ay)*0.5*h
	x1, y1 := (bx+1)*0.5*w, (1-by)*0.5*h

	t0, t1, vis := clipRect(x0, y0, x1, y1, -1, -1, w, h)
	if !vis {
		return
	}
	sx0, sy0 := x0+(x1-x0)*t0, y0+(y1-y0)*t0
	sx1, sy1 := x0+(x1-x0)*t1, y0+(y1-y0)*t1
	c0, c1 := ca.Lerp(cb, t0), ca.Lerp(cb, t1)
	bresenham(dst, floor(sx0), floor(sy0), floor(sx1), floor(sy1), c0, c1)
}

// bresenham visits each pixel of the line once so additive blending does not
// double up.
func bresenham(dst *Frame, x0, y0, x1, y1 int, c0, c1 Color) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	n := max(dx, -dy)
	inv := float32(0)
	if n > 0 {
		inv = 1 / float32(n)
	}
	e := dx + dy
	for i := 0; ; i++ {
		plotAdd(dst, x0, y0, c0.Lerp(c1, float32(i)*inv))
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func plotAdd(dst *Frame, x, y int, c Color) {
	if x < 0 || y < 0 || x >= dst.W || y >= dst.H {
		return
	}
	i := y*dst.W + x
	dst.Pix[i] = dst.Pix[i].Add(c)
}

func floor(v float32) int { return int(math.Floor(float64(v))) }

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// clipRect is Liang-Barsky: the parameter range of the segment inside the
// rectangle, or vis=false.
func clipRect(x0, y0, x1, y1, minX, minY, maxX, maxY float32) (t0, t1 float32, vis bool) {
	t0, t1 = 0, 1
	dx, dy := x1-x0, y1-y0
	for _, e := range [4][2]float32{
		{-dx, x0 - minX},
		{dx, maxX - x0},
		{-dy, y0 - minY},
		{dy, maxY - y0},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return t0, t1, true
}
