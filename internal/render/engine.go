package render

import (
	"errors"
	"fmt"
	"time"
)

// Driver presents finished frames (terminal, websocket, LED panel, ...).
type Driver interface {
	Write(*Frame) error
}

// Engine renders frames using an active Renderer, optional next Renderer for crossfades,
// applies post-processing, then writes to the driver.
type Engine struct {
	Drv Driver

	// active + next renderer and uniforms
	RActive Renderer
	RNext   Renderer
	UActive *Uniforms
	UNext   *Uniforms

	// framebuffers
	BufA *Frame // active
	BufB *Frame // next (during crossfade)
	Out  *Frame // mixed + post

	// crossfade
	alpha  float64 // 0..1
	fading bool

	// timing
	t0 time.Time

	// post
	post PostPipeline

	// metrics (last durations in ms)
	Last struct {
		RenderMS float64
		PostMS   float64
		TotalMS  float64
		Frames   uint64
	}
}

// PostPipeline groups post stages; all are optional. Stages run in field order.
type PostPipeline struct {
	Bloom   func(*Frame, *Uniforms)
	ToneMap func([]Color, *Uniforms)
	Limiter func([]Color, *Uniforms)
}

// NewEngine allocates w x h buffers and returns an Engine with the filmic
// tone map wired.
func NewEngine(w, h int, drv Driver, r Renderer, u *Uniforms) (*Engine, error) {
	if !ValidSize(w, h) {
		return nil, fmt.Errorf("invalid dimensions %dx%d", w, h)
	}
	if u == nil {
		u = NewUniforms()
	}
	e := &Engine{
		Drv:     drv,
		RActive: r,
		UActive: u,
		BufA:    NewFrame(w, h),
		BufB:    NewFrame(w, h),
		Out:     NewFrame(w, h),
		post: PostPipeline{
			ToneMap: FilmicToneMap,
		},
		t0: time.Now(),
	}
	if rs, ok := r.(Resizer); ok {
		rs.Resize(w, h)
	}
	return e, nil
}

// Size is the current framebuffer size.
func (e *Engine) Size() (w, h int) { return e.Out.W, e.Out.H }

// Resize reallocates the framebuffers and tells the renderers. Sizes
// outside ValidSize are ignored.
func (e *Engine) Resize(w, h int) {
	if !ValidSize(w, h) {
		return
	}
	e.BufA.Resize(w, h)
	e.BufB.Resize(w, h)
	e.Out.Resize(w, h)
	for _, r := range []Renderer{e.RActive, e.RNext} {
		if rs, ok := r.(Resizer); ok {
			rs.Resize(w, h)
		}
	}
}

// Now returns seconds since engine start, scaled by TimeScale.
func (e *Engine) Now() float64 {
	scale := 1.0
	if e.UActive != nil && e.UActive.TimeScale != 0 {
		scale = e.UActive.TimeScale
	}
	return time.Since(e.t0).Seconds() * scale
}

// RenderOnce renders a single frame at absolute time t (seconds).
// If t < 0, it uses Engine.Now().
func (e *Engine) RenderOnce(t float64) error {
	if t < 0 {
		t = e.Now()
	}
	start := time.Now()

	if e.RActive != nil {
		e.RActive.Render(e.BufA, t, e.UActive)
	} else {
		e.BufA.Fill(Color{})
	}

	if e.fading && e.RNext != nil {
		e.RNext.Render(e.BufB, t, e.UNext)
		Mix(e.Out.Pix, e.BufA.Pix, e.BufB.Pix, e.alpha)
	} else {
		copy(e.Out.Pix, e.BufA.Pix)
	}
	if b := e.UActive.Param("Brightness", e.UActive.GlobalBrightness); b >= 0 && b != 1 {
		scaleFrame(e.Out.Pix, float32(b))
	}

	postStart := time.Now()
	if e.post.Bloom != nil {
		e.post.Bloom(e.Out, e.UActive)
	}
	if e.post.ToneMap != nil {
		e.post.ToneMap(e.Out.Pix, e.UActive)
	}
	if e.post.Limiter != nil {
		e.post.Limiter(e.Out.Pix, e.UActive)
	}
	e.Last.PostMS = msSince(postStart)

	if e.Drv != nil {
		if err := e.Drv.Write(e.Out); err != nil {
			return fmt.Errorf("driver write: %w", err)
		}
	}

	e.Last.TotalMS = msSince(start)
	e.Last.RenderMS = e.Last.TotalMS - e.Last.PostMS
	e.Last.Frames++
	return nil
}

func msSince(t time.Time) float64 { return float64(time.Since(t).Microseconds()) / 1000.0 }

func (e *Engine) SetPost(p PostPipeline) { e.post = p }

// ---- Hooks that match Player expectations ----

// SetRenderer becomes the active renderer immediately.
// If preset != "", ApplyPreset is called on the renderer with UActive.
func (e *Engine) SetRenderer(name string, preset string, reg *Registry) error {
	rr, err := lookup(reg, name)
	if err != nil {
		return err
	}
	e.RActive = rr
	if rs, ok := rr.(Resizer); ok {
		rs.Resize(e.Size())
	}
	if preset != "" {
		rr.ApplyPreset(preset, e.UActive)
	}
	e.RNext = nil
	e.fading = false
	e.alpha = 0
	return nil
}

// ArmNext prepares the next renderer for crossfade. Its uniforms start as a
// copy of the active ones.
func (e *Engine) ArmNext(name string, preset string, reg *Registry) error {
	rr, err := lookup(reg, name)
	if err != nil {
		return err
	}
	e.RNext = rr
	e.UNext = e.UActive.Clone()
	if rs, ok := rr.(Resizer); ok {
		rs.Resize(e.Size())
	}
	if preset != "" {
		rr.ApplyPreset(preset, e.UNext)
	}
	e.fading = true
	return nil
}

func lookup(reg *Registry, name string) (Renderer, error) {
	if reg == nil {
		return nil, errors.New("registry is nil")
	}
	rr, ok := reg.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRendererNotFound, name)
	}
	return rr, nil
}

// SetCrossfade sets mix alpha 0..1 and enables/disables fading.
// Reaching 1 promotes the next renderer to active.
func (e *Engine) SetCrossfade(alpha float64) {
	switch {
	case alpha <= 0:
		e.alpha = 0
		e.fading = false
	case alpha >= 1:
		e.alpha = 1
		e.fading = false
		if e.RNext != nil {
			e.RActive = e.RNext
			e.UActive = e.UNext
		}
		e.RNext = nil
		e.alpha = 0
	default:
		e.alpha = alpha
		e.fading = true
	}
}

// Crossfade reports the current mix alpha and whether a fade is running.
func (e *Engine) Crossfade() (float64, bool) { return e.alpha, e.fading }

// SetParam updates active uniforms.
func (e *Engine) SetParam(name string, v float64) {
	if e.UActive == nil {
		return
	}
	if e.UActive.Params == nil {
		e.UActive.Params = map[string]float64{}
	}
	e.UActive.Params[name] = v
}

// SetBool updates active uniforms.
func (e *Engine) SetBool(name string, b bool) {
	if e.UActive == nil {
		return
	}
	if e.UActive.Bools == nil {
		e.UActive.Bools = map[string]bool{}
	}
	e.UActive.Bools[name] = b
}

// ApplyPreset applies a preset of the active renderer to the active uniforms.
func (e *Engine) ApplyPreset(name string) {
	if e.RActive != nil {
		e.RActive.ApplyPreset(name, e.UActive)
	}
}
