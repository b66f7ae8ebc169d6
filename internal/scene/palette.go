package scene

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-wormhole/internal/render"
)

// HueFunc maps a path parameter in [0,1) onto a raw hue. The result may
// leave [0,1); callers pass it through Wrap01.
type HueFunc func(p float64) float64

// Wrap01 folds any hue onto [0,1).
func Wrap01(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	w := h - math.Floor(h)
	if w >= 1 {
		return 0
	}
	return w
}

// HSL converts a hue/saturation/lightness triple (all 0..1) to linear RGB.
// The hue is wrapped first.
func HSL(h, s, l float64) render.Color {
	r, g, b := colorful.Hsl(Wrap01(h)*360, clamp01(s), clamp01(l)).LinearRgb()
	return render.Color{R: float32(r), G: float32(g), B: float32(b)}
}

// HexColor converts a 0xRRGGBB value to linear RGB.
func HexColor(hex uint32) render.Color {
	c := colorful.Color{
		R: float64((hex>>16)&0xff) / 255,
		G: float64((hex>>8)&0xff) / 255,
		B: float64(hex&0xff) / 255,
	}
	r, g, b := c.LinearRgb()
	return render.Color{R: float32(r), G: float32(g), B: float32(b)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
