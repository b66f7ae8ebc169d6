// Package camera holds the perspective camera, the path-following rig that
// drives it, and a damped orbit control layered on top.
package camera

import (
	"github.com/goki/mat32"
)

// Camera is a perspective camera. Call SetPose/SetAspect to move it; the
// matrices are refreshed on every change.
type Camera struct {
	FOV    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32

	Pos    mat32.Vec3
	Target mat32.Vec3
	UpDir  mat32.Vec3

	ViewMatrix mat32.Mat4
	PrjnMatrix mat32.Mat4
	viewProj   mat32.Mat4
}

// New returns a camera with the tunnel defaults (75 degree FOV, near 0.1,
// far 1000) placed at z=5 looking at the origin.
func New(aspect float32) *Camera {
	if aspect <= 0 {
		aspect = 1
	}
	c := &Camera{FOV: 75, Aspect: aspect, Near: 0.1, Far: 1000, UpDir: mat32.Vec3Y}
	c.SetPose(mat32.NewVec3(0, 0, 5), mat32.Vec3Zero)
	return c
}

// SetPose places the camera at pos looking at target.
func (c *Camera) SetPose(pos, target mat32.Vec3) {
	c.Pos, c.Target = pos, target
	c.UpdateMatrix()
}

// SetAspect updates the projection for a w x h viewport. Geometry is untouched.
func (c *Camera) SetAspect(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.Aspect = float32(w) / float32(h)
	c.UpdateMatrix()
}

// UpdateMatrix updates the view and prjn matrices.
func (c *Camera) UpdateMatrix() {
	c.ViewMatrix = lookAt(c.Pos, c.Target, c.UpDir)
	c.PrjnMatrix.SetPerspective(c.FOV, c.Aspect, c.Near, c.Far)
	c.viewProj.MulMatrices(&c.PrjnMatrix, &c.ViewMatrix)
}

// ViewProj is projection * view.
func (c *Camera) ViewProj() mat32.Mat4 { return c.viewProj }

// ViewVector is the vector from the target to the camera.
func (c *Camera) ViewVector() mat32.Vec3 { return c.Pos.Sub(c.Target) }

// Project maps a world point to normalized device coordinates. depth is the
// view-space distance in front of the camera; ok is false for points behind
// the near plane.
func (c *Camera) Project(p mat32.Vec3) (x, y, depth float32, ok bool) {
	m := &c.viewProj
	cx := m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	cy := m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	cw := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if cw < c.Near {
		return 0, 0, cw, false
	}
	return cx / cw, cy / cw, cw, true
}

// ViewDepth is the distance of p in front of the camera along its view axis.
func (c *Camera) ViewDepth(p mat32.Vec3) float32 {
	m := &c.ViewMatrix
	return -(m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14])
}

// lookAt builds a right-handed view matrix (camera looks down -Z).
func lookAt(eye, target, up mat32.Vec3) mat32.Mat4 {
	f := target.Sub(eye)
	if f.IsNil() {
		f = mat32.NewVec3(0, 0, -1)
	}
	f = f.Normal()
	if up.IsNil() {
		up = mat32.Vec3Y
	}
	s := f.Cross(up)
	if s.Length() < 1e-6 {
		// looking straight along up; pick any perpendicular
		s = f.Cross(mat32.NewVec3(0, 0, 1))
		if s.Length() < 1e-6 {
			s = f.Cross(mat32.NewVec3(1, 0, 0))
		}
	}
	s = s.Normal()
	u := s.Cross(f)

	// column-major
	return mat32.Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}
