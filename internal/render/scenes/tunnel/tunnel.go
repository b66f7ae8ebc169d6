// Package tunnel is the fly-through renderer: a camera rides the path
// through the wireframe tube while the boxes spin and cycle color.
package tunnel

import (
	"fmt"
	"math/rand"

	"github.com/coreman2200/funtimes-wormhole/internal/camera"
	"github.com/coreman2200/funtimes-wormhole/internal/path"
	"github.com/coreman2200/funtimes-wormhole/internal/render"
	"github.com/coreman2200/funtimes-wormhole/internal/scene"
)

// SceneContext is everything one tunnel instance owns for its lifetime.
type SceneContext struct {
	Path   *path.Path
	Scene  *scene.Scene
	Camera *camera.Camera
	Rig    *camera.Rig
	Orbit  *camera.Orbit
}

// Renderer implements render.Renderer over a SceneContext.
type Renderer struct {
	name string
	ctx  *SceneContext
	segs []scene.Segment // scratch, reused every frame

	Ticks uint64
}

// New builds the scene along p with opts and returns a renderer for it.
func New(name string, p *path.Path, opts scene.Options, rng *rand.Rand) (*Renderer, error) {
	sc, err := scene.Build(p, opts, rng)
	if err != nil {
		return nil, fmt.Errorf("tunnel %s: %w", name, err)
	}
	pr := sc.Preset
	rig := camera.NewRig(p, pr.TimeScale)
	rig.LoopMs, rig.LookAhead = pr.LoopMs, pr.LookAhead
	return &Renderer{
		name: name,
		ctx: &SceneContext{
			Path:   p,
			Scene:  sc,
			Camera: camera.New(16.0 / 9),
			Rig:    rig,
			Orbit:  camera.NewOrbit(),
		},
	}, nil
}

func (r *Renderer) Name() string           { return r.name }
func (r *Renderer) Presets() []string      { return scene.PresetNames() }
func (r *Renderer) Context() *SceneContext { return r.ctx }
func (r *Renderer) Preset() scene.Preset   { return r.ctx.Scene.Preset }
func (r *Renderer) Drag(dx, dy float32)    { r.ctx.Orbit.Drag(dx, dy) }
func (r *Renderer) Zoom(delta float32)     { r.ctx.Orbit.Zoom(delta) }
func (r *Renderer) Resize(w, h int)        { r.ctx.Camera.SetAspect(w, h) }
func (r *Renderer) ApplyPreset(name string, u *render.Uniforms) {
	pr, err := scene.PresetByName(name)
	if err != nil {
		return
	}
	r.ctx.Scene.SetPreset(pr)
	r.ctx.Rig.TimeScale = pr.TimeScale
	r.ctx.Rig.LoopMs, r.ctx.Rig.LookAhead = pr.LoopMs, pr.LookAhead
	pr.Apply(u)
}

// Render runs one tick at t seconds: pose the camera, draw, let the orbit
// control nudge the camera, then advance box spin and colors.
func (r *Renderer) Render(dst *render.Frame, t float64, u *render.Uniforms) {
	c := r.ctx
	pr := c.Scene.Preset

	c.Rig.TimeScale = u.Param("CameraTimeScale", pr.TimeScale)
	c.Rig.Update(t * 1000).Apply(c.Camera)

	r.draw(dst, u)

	c.Orbit.Update(c.Camera)
	c.Scene.Advance(t)
	r.Ticks++
}

func (r *Renderer) draw(dst *render.Frame, u *render.Uniforms) {
	c := r.ctx
	pr := c.Scene.Preset
	dst.Fill(render.Color{})
	if dst.W == 0 || dst.H == 0 {
		return
	}
	if a := float32(dst.W) / float32(dst.H); a != c.Camera.Aspect {
		c.Camera.SetAspect(dst.W, dst.H)
	}
	fog := render.Fog{Color: pr.FogColor, Density: float32(u.Param("FogDensity", pr.FogDensity))}

	c.Scene.Graph.Each(func(_ scene.Handle, o *scene.Object) {
		if !o.Visible || o.Opacity <= 0 {
			return
		}
		col := scene.HSL(o.Hue, o.Sat, o.Light).Scale(o.Opacity)
		r.segs = o.WorldSegments(r.segs[:0])
		for _, s := range r.segs {
			render.DrawLine(dst, c.Camera, c.Camera.Near, s.A, s.B, col, col, fog)
		}
	})
}
