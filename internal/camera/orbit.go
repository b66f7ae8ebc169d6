package camera

import (
	"github.com/goki/mat32"
)

// Orbit is a damped orbit control: drags and zooms build up velocity which
// Update spends around the camera target and then decays.
//
// The rig sets the pose again on the next tick, so anything Orbit does only
// lasts until then.
type Orbit struct {
	Damping  float32 // fraction of velocity applied and removed per update
	Speed    float32 // degrees per drag unit
	MinDist  float32
	MaxDist  float32
	Disabled bool

	yaw, pitch float32 // degrees of pending rotation
	zoom       float32 // pending fractional dolly
}

// NewOrbit returns an orbit control with damping 0.03.
func NewOrbit() *Orbit {
	return &Orbit{Damping: 0.03, Speed: 0.5, MinDist: 0.01, MaxDist: 100}
}

// Drag accumulates a pointer drag, in pixels.
func (o *Orbit) Drag(dx, dy float32) {
	o.yaw -= dx * o.Speed
	o.pitch -= dy * o.Speed
}

// Zoom accumulates a dolly; positive moves away from the target.
func (o *Orbit) Zoom(delta float32) {
	o.zoom += delta
}

// Active reports whether there is pending motion.
func (o *Orbit) Active() bool {
	const eps = 1e-4
	return abs(o.yaw) > eps || abs(o.pitch) > eps || abs(o.zoom) > eps
}

// Update moves cam by the damped share of the pending motion. Returns false
// when nothing was applied.
func (o *Orbit) Update(cam *Camera) bool {
	if o.Disabled || !o.Active() {
		return false
	}
	d := o.Damping
	if d <= 0 || d > 1 {
		d = 1
	}
	dyaw, dpitch, dzoom := o.yaw*d, o.pitch*d, o.zoom*d
	o.yaw -= dyaw
	o.pitch -= dpitch
	o.zoom -= dzoom

	off := cam.ViewVector()
	if off.IsNil() {
		off = mat32.NewVec3(0, 0, 1)
	}
	up := cam.UpDir
	if up.IsNil() {
		up = mat32.Vec3Y
	}
	right := up.Cross(off.Normal())
	if right.Length() < 1e-6 {
		right = mat32.NewVec3(1, 0, 0)
	}
	right = right.Normal()

	off = off.MulQuat(mat32.NewQuatAxisAngle(up, mat32.DegToRad(dyaw)))
	off = off.MulQuat(mat32.NewQuatAxisAngle(right, mat32.DegToRad(dpitch)))

	dist := off.Length() * (1 + dzoom)
	if dist < o.MinDist {
		dist = o.MinDist
	}
	if o.MaxDist > 0 && dist > o.MaxDist {
		dist = o.MaxDist
	}
	off = off.Normal().MulScalar(dist)
	cam.SetPose(cam.Target.Add(off), cam.Target)
	return true
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
