package render

import (
	"errors"
	"sort"
)

// ErrRendererNotFound is returned when a registry lookup misses.
var ErrRendererNotFound = errors.New("renderer not found")

// Color is linear RGB; values may exceed 1 before tone mapping.
type Color struct{ R, G, B float32 }

func (c Color) Add(o Color) Color     { return Color{c.R + o.R, c.G + o.G, c.B + o.B} }
func (c Color) Scale(s float32) Color { return Color{c.R * s, c.G * s, c.B * s} }
func (c Color) Luma() float32         { return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B }
func (c Color) Lerp(o Color, t float32) Color {
	return Color{c.R + (o.R-c.R)*t, c.G + (o.G-c.G)*t, c.B + (o.B-c.B)*t}
}

// Frame is a row-major W x H image.
type Frame struct {
	W, H int
	Pix  []Color
}

func NewFrame(w, h int) *Frame {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Frame{W: w, H: h, Pix: make([]Color, w*h)}
}

// At returns the pixel at x,y; out of range reads are black.
func (f *Frame) At(x, y int) Color {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return Color{}
	}
	return f.Pix[y*f.W+x]
}

func (f *Frame) Set(x, y int, c Color) {
	if x < 0 || y < 0 || x >= f.W || y >= f.H {
		return
	}
	f.Pix[y*f.W+x] = c
}

// Fill sets every pixel to c.
func (f *Frame) Fill(c Color) {
	for i := range f.Pix {
		f.Pix[i] = c
	}
}

// MaxDim bounds either side of a frame.
const MaxDim = 4096

// ValidSize reports whether w x h is a frame size the engine accepts.
func ValidSize(w, h int) bool {
	return w > 0 && h > 0 && w <= MaxDim && h <= MaxDim
}

// Resize reallocates only when the size changes. Sizes outside ValidSize
// leave the frame as it is.
func (f *Frame) Resize(w, h int) {
	if !ValidSize(w, h) || (w == f.W && h == f.H) {
		return
	}
	f.W, f.H = w, h
	if cap(f.Pix) >= w*h {
		f.Pix = f.Pix[:w*h]
	} else {
		f.Pix = make([]Color, w*h)
	}
}

// Uniforms are shared parameters handed to renderers and post stages.
type Uniforms struct {
	GlobalBrightness float64
	TimeScale        float64
	Params           map[string]float64
	Bools            map[string]bool
}

// NewUniforms returns uniforms with brightness and time scale at 1.
func NewUniforms() *Uniforms {
	return &Uniforms{GlobalBrightness: 1, TimeScale: 1, Params: map[string]float64{}, Bools: map[string]bool{}}
}

// Clone copies u including its maps.
func (u *Uniforms) Clone() *Uniforms {
	if u == nil {
		return NewUniforms()
	}
	c := &Uniforms{
		GlobalBrightness: u.GlobalBrightness,
		TimeScale:        u.TimeScale,
		Params:           make(map[string]float64, len(u.Params)),
		Bools:            make(map[string]bool, len(u.Bools)),
	}
	for k, v := range u.Params {
		c.Params[k] = v
	}
	for k, v := range u.Bools {
		c.Bools[k] = v
	}
	return c
}

// Param reads a param with a default.
func (u *Uniforms) Param(key string, def float64) float64 {
	if u == nil || u.Params == nil {
		return def
	}
	if v, ok := u.Params[key]; ok {
		return v
	}
	return def
}

type Renderer interface {
	Name() string
	Presets() []string
	ApplyPreset(name string, u *Uniforms)
	Render(dst *Frame, t float64, u *Uniforms)
}

// Resizer is implemented by renderers that track the viewport size.
type Resizer interface {
	Resize(w, h int)
}

type Registry struct{ m map[string]Renderer }

func NewRegistry() *Registry { return &Registry{m: map[string]Renderer{}} }

func (r *Registry) Register(rr Renderer) {
	if rr == nil {
		return
	}
	r.m[rr.Name()] = rr
}

func (r *Registry) Get(name string) (Renderer, bool) { rr, ok := r.m[name]; return rr, ok }

// List returns registered names in sorted order.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
