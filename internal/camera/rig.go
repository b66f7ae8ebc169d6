package camera

import (
	"math"

	"github.com/goki/mat32"

	"github.com/coreman2200/funtimes-wormhole/internal/path"
)

// State is the pose the rig computes for one instant.
type State struct {
	Pos    mat32.Vec3
	LookAt mat32.Vec3
}

// Rig flies a camera around a closed path. It holds no per-frame state:
// Update is a pure function of elapsed time.
type Rig struct {
	Path      *path.Path
	TimeScale float64 // elapsed ms -> loop time units
	LoopMs    float64
	LookAhead float64
}

// NewRig returns a rig with the stock loop length and look-ahead.
func NewRig(p *path.Path, timeScale float64) *Rig {
	return &Rig{Path: p, TimeScale: timeScale, LoopMs: 4000, LookAhead: 0.03}
}

// Phase maps elapsed milliseconds onto the loop fraction in [0,1).
func (r *Rig) Phase(elapsedMs float64) float64 {
	loop := r.LoopMs
	if loop <= 0 {
		loop = 4000
	}
	tm := elapsedMs * r.TimeScale
	p := math.Mod(tm, loop) / loop
	if p < 0 {
		p += 1
	}
	if p >= 1 {
		p = 0
	}
	return p
}

// Update computes the camera pose at elapsedMs.
func (r *Rig) Update(elapsedMs float64) State {
	p := r.Phase(elapsedMs)
	return State{
		Pos:    r.Path.PointAt(p),
		LookAt: r.Path.PointAt(math.Mod(p+r.LookAhead, 1)),
	}
}

// Apply writes s onto cam.
func (s State) Apply(cam *Camera) {
	cam.SetPose(s.Pos, s.LookAt)
}
