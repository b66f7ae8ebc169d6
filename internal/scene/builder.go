// Package scene builds the static tunnel geometry and the decorative boxes
// once at startup, and advances their per-tick rotation and color state.
package scene

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/goki/mat32"

	"github.com/coreman2200/funtimes-wormhole/internal/path"
)

// ErrNegativeCount is returned by Build for a negative box count.
var ErrNegativeCount = errors.New("scene: box count must not be negative")

// Options controls what Build generates.
type Options struct {
	NumBoxes        int
	BoxSize         float32
	Jitter          float64 // max extra path fraction per box
	TubeRadius      float32
	TubularSegments int
	RadialSegments  int
	Preset          Preset
}

// DefaultOptions returns the stock tunnel with the Neon palette.
func DefaultOptions() Options {
	return Options{
		NumBoxes:        66,
		BoxSize:         0.06,
		Jitter:          0.1,
		TubeRadius:      0.65,
		TubularSegments: 222,
		RadialSegments:  16,
		Preset:          Neon,
	}
}

// Box is one decorative cube. Pos and BaseRot are fixed at build time;
// Rot and the hues change every tick.
type Box struct {
	Index       int
	Param       float64 // path fraction the box was placed at
	Pos         mat32.Vec3
	Offset      mat32.Vec3 // Pos minus the path sample
	BaseRot     mat32.Vec3
	Rot         mat32.Vec3
	BaseHue     float64
	PhaseOffset float64
	Hue         float64
	EdgeHue     float64

	Mesh Handle // wireframe body
	Edge Handle // outline twin
}

// Scene is everything Build produced. The graph holds the tunnel outline
// followed by a body and an outline per box.
type Scene struct {
	Graph      *Graph
	Tube       *Tube
	TubeHandle Handle
	Boxes      []*Box
	Preset     Preset

	TunnelHue float64
}

// Build constructs the tunnel and places the boxes along p. All randomness
// comes from rng.
func Build(p *path.Path, opts Options, rng *rand.Rand) (*Scene, error) {
	if opts.NumBoxes < 0 {
		return nil, fmt.Errorf("build scene with %d boxes: %w", opts.NumBoxes, ErrNegativeCount)
	}
	if p == nil {
		return nil, errors.New("scene: nil path")
	}
	if rng == nil {
		return nil, errors.New("scene: nil rng")
	}
	if opts.Preset.BoxHue == nil {
		opts.Preset = Neon
	}

	s := &Scene{
		Graph:  &Graph{},
		Tube:   BuildTube(p, opts.TubeRadius, opts.TubularSegments, opts.RadialSegments),
		Preset: opts.Preset,
	}
	s.TunnelHue = Wrap01(opts.Preset.TunnelHue)
	s.TubeHandle = s.Graph.Add(&Object{
		Name:     "tunnel",
		Segments: s.Tube.Edges(),
		Hue:      s.TunnelHue,
		Sat:      1,
		Light:    opts.Preset.TunnelLight,
		Opacity:  1,
		Visible:  true,
		Identity: true,
	})

	body := BoxWireframe(opts.BoxSize)
	outline := BoxEdges(opts.BoxSize)
	n := opts.NumBoxes
	s.Boxes = make([]*Box, 0, n)
	for i := 0; i < n; i++ {
		param := math.Mod(float64(i)/float64(n)+rng.Float64()*opts.Jitter, 1)
		sample := p.PointAt(param)
		off := mat32.NewVec3(float32(rng.Float64()-0.4), 0, float32(rng.Float64()-0.4))
		rot := mat32.NewVec3(
			float32(rng.Float64()*2*math.Pi),
			float32(rng.Float64()*2*math.Pi),
			float32(rng.Float64()*2*math.Pi),
		)
		b := &Box{
			Index:       i,
			Param:       param,
			Pos:         sample.Add(off),
			Offset:      off,
			BaseRot:     rot,
			Rot:         rot,
			PhaseOffset: float64(i) * opts.Preset.IndexHueStep,
		}
		b.BaseHue = Wrap01(opts.Preset.BoxHue(param))
		b.Hue = b.BaseHue
		b.EdgeHue = Wrap01(b.Hue + opts.Preset.EdgeHueOffset)

		b.Mesh = s.Graph.Add(&Object{
			Name:     fmt.Sprintf("box-%d", i),
			Segments: body,
			Pos:      b.Pos,
			Rot:      b.Rot,
			Hue:      b.Hue,
			Sat:      1,
			Light:    opts.Preset.BoxLightness,
			Opacity:  1,
			Visible:  true,
		})
		b.Edge = s.Graph.Add(&Object{
			Name:     fmt.Sprintf("box-%d-edges", i),
			Segments: outline,
			Pos:      b.Pos,
			Rot:      b.Rot,
			Hue:      b.EdgeHue,
			Sat:      1,
			Light:    opts.Preset.BoxLightness,
			Opacity:  opts.Preset.EdgeOpacity,
			Visible:  true,
		})
		s.Boxes = append(s.Boxes, b)
	}
	return s, nil
}

// Advance applies one tick of box spin and recolors boxes and tunnel for
// time t in seconds.
func (s *Scene) Advance(t float64) {
	pr := s.Preset
	for _, b := range s.Boxes {
		b.Rot.Y += float32(pr.RotSpeed)
		b.Rot.X += float32(pr.RotSpeed * 0.5)
		b.Hue = Wrap01(b.BaseHue + t*pr.HueSpeed + b.PhaseOffset)
		b.EdgeHue = Wrap01(b.Hue + pr.EdgeHueOffset)

		if o := s.Graph.Get(b.Mesh); o != nil {
			o.Rot, o.Hue = b.Rot, b.Hue
		}
		if o := s.Graph.Get(b.Edge); o != nil {
			o.Rot, o.Hue = b.Rot, b.EdgeHue
		}
	}
	s.TunnelHue = Wrap01(pr.TunnelHue + pr.TunnelHueAmp*math.Sin(t*pr.TunnelHueFreq))
	if o := s.Graph.Get(s.TubeHandle); o != nil {
		o.Hue = s.TunnelHue
	}
}

// SetPreset switches palette and speeds in place. Base hues are recomputed
// from each box's path fraction; positions and spin are kept.
func (s *Scene) SetPreset(pr Preset) {
	if pr.BoxHue == nil {
		return
	}
	s.Preset = pr
	for _, b := range s.Boxes {
		b.BaseHue = Wrap01(pr.BoxHue(b.Param))
		b.PhaseOffset = float64(b.Index) * pr.IndexHueStep
		if o := s.Graph.Get(b.Mesh); o != nil {
			o.Light = pr.BoxLightness
		}
		if o := s.Graph.Get(b.Edge); o != nil {
			o.Light, o.Opacity = pr.BoxLightness, pr.EdgeOpacity
		}
	}
	if o := s.Graph.Get(s.TubeHandle); o != nil {
		o.Light = pr.TunnelLight
	}
}
