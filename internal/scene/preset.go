package scene

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coreman2200/funtimes-wormhole/internal/render"
)

// Preset carries everything that differs between the tunnel variants.
// Geometry and behavior are shared; only these constants change.
type Preset struct {
	Name string

	FogColor   render.Color
	FogDensity float64

	// camera
	TimeScale float64 // elapsed ms -> path time units
	LoopMs    float64
	LookAhead float64

	// boxes
	RotSpeed      float64 // radians per tick around Y; X gets half
	BoxHue        HueFunc
	EdgeHueOffset float64
	HueSpeed      float64 // hue turns per second
	IndexHueStep  float64
	BoxLightness  float64
	EdgeOpacity   float32

	// tunnel outline
	TunnelHue     float64
	TunnelHueAmp  float64
	TunnelHueFreq float64 // Hz
	TunnelLight   float64

	// post
	Params map[string]float64
}

// Neon is the default look: black fog, slow drift, hue running backwards
// along the path and a hot, tight bloom.
var Neon = Preset{
	Name:          "neon",
	FogColor:      render.Color{},
	FogDensity:    0.3,
	TimeScale:     0.01,
	LoopMs:        4000,
	LookAhead:     0.03,
	RotSpeed:      0.05,
	BoxHue:        func(p float64) float64 { return 1 - p },
	EdgeHueOffset: 0.5,
	HueSpeed:      0.05,
	IndexHueStep:  0.002,
	BoxLightness:  0.5,
	EdgeOpacity:   0.9,
	TunnelHue:     1.0 / 3,
	TunnelHueAmp:  0.08,
	TunnelHueFreq: 0.05,
	TunnelLight:   0.5,
	Params: map[string]float64{
		"BloomThreshold": 0.002,
		"BloomStrength":  3.5,
		"BloomRadius":    0,
		"ExposureEV":     0,
		"OutputGamma":    2.2,
	},
}

// Ember is the warm fly-through: dark red fog, a faster camera and a
// palette shifted into the reds.
var Ember = Preset{
	Name:          "ember",
	FogColor:      HexColor(0x1a0500),
	FogDensity:    0.25,
	TimeScale:     0.05,
	LoopMs:        4000,
	LookAhead:     0.03,
	RotSpeed:      0.02,
	BoxHue:        func(p float64) float64 { return p*0.8 + 0.5 },
	EdgeHueOffset: 0.5,
	HueSpeed:      0.1,
	IndexHueStep:  0.004,
	BoxLightness:  0.55,
	EdgeOpacity:   0.9,
	TunnelHue:     0.05,
	TunnelHueAmp:  0.04,
	TunnelHueFreq: 0.1,
	TunnelLight:   0.45,
	Params: map[string]float64{
		"BloomThreshold": 0.01,
		"BloomStrength":  2.0,
		"BloomRadius":    0.4,
		"ExposureEV":     0,
		"OutputGamma":    2.2,
	},
}

var presets = map[string]Preset{
	Neon.Name:  Neon,
	Ember.Name: Ember,
}

// PresetByName looks a preset up case-insensitively.
func PresetByName(name string) (Preset, error) {
	p, ok := presets[strings.ToLower(name)]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (have %s)", name, strings.Join(PresetNames(), ", "))
	}
	return p, nil
}

// PresetNames lists the known presets in sorted order.
func PresetNames() []string {
	out := make([]string, 0, len(presets))
	for k := range presets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Apply copies the preset's post parameters into u.
func (p Preset) Apply(u *render.Uniforms) {
	if u == nil {
		return
	}
	if u.Params == nil {
		u.Params = map[string]float64{}
	}
	for k, v := range p.Params {
		u.Params[k] = v
	}
	u.Params["FogDensity"] = p.FogDensity
}
