package scene

import (
	"math"
	"math/rand"
	"testing"

	"github.com/goki/mat32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-wormhole/internal/path"
)

func smallOpts(n int) Options {
	o := DefaultOptions()
	o.NumBoxes = n
	o.TubularSegments = 40
	o.RadialSegments = 8
	return o
}

func TestBuildCounts(t *testing.T) {
	for _, n := range []int{0, 1, 66} {
		s, err := Build(path.Default(), smallOpts(n), rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		assert.Len(t, s.Boxes, n)
		assert.Equal(t, 1+2*n, s.Graph.Len(), "tunnel + body + outline per box")

		bodies, outlines := 0, 0
		for _, b := range s.Boxes {
			if o := s.Graph.Get(b.Mesh); assert.NotNil(t, o) {
				assert.Len(t, o.Segments, 18)
				bodies++
			}
			if o := s.Graph.Get(b.Edge); assert.NotNil(t, o) {
				assert.Len(t, o.Segments, 12)
				outlines++
			}
		}
		assert.Equal(t, n, bodies)
		assert.Equal(t, n, outlines)
	}
}

func TestBuildRejectsNegativeCount(t *testing.T) {
	_, err := Build(path.Default(), smallOpts(-1), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrNegativeCount)
}

func TestBoxPlacementJitter(t *testing.T) {
	p := path.Default()
	s, err := Build(p, smallOpts(200), rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	for _, b := range s.Boxes {
		assert.GreaterOrEqual(t, b.Param, 0.0)
		assert.Less(t, b.Param, 1.0)

		base := float64(b.Index) / 200
		assert.InDelta(t, 0, math.Mod(b.Param-base+1, 1), 0.1+1e-9, "param jitter")

		sample := p.PointAt(b.Param)
		d := b.Pos.Sub(sample)
		assert.Equal(t, float32(0), d.Y, "y untouched")
		assert.InDelta(t, 0, d.Sub(b.Offset).Length(), 1e-5)
		for _, c := range []float32{b.Offset.X, b.Offset.Z} {
			assert.GreaterOrEqual(t, c, float32(-0.4))
			assert.Less(t, c, float32(0.6))
			assert.Less(t, float64(abs32(c)), 1.0)
		}
		for _, r := range []float32{b.BaseRot.X, b.BaseRot.Y, b.BaseRot.Z} {
			assert.GreaterOrEqual(t, r, float32(0))
			assert.LessOrEqual(t, r, float32(2*math.Pi))
		}
	}
}

func TestSeededBuildIsReproducible(t *testing.T) {
	a, err := Build(path.Default(), smallOpts(10), rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := Build(path.Default(), smallOpts(10), rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	for i := range a.Boxes {
		assert.Equal(t, a.Boxes[i].Pos, b.Boxes[i].Pos)
		assert.Equal(t, a.Boxes[i].BaseRot, b.Boxes[i].BaseRot)
	}
}

func TestHuesStayWrapped(t *testing.T) {
	for _, pr := range []Preset{Neon, Ember} {
		o := smallOpts(66)
		o.Preset = pr
		s, err := Build(path.Default(), o, rand.New(rand.NewSource(3)))
		require.NoError(t, err)
		for _, tm := range []float64{0, 0.5, 17, 1234.5, -3} {
			s.Advance(tm)
			for _, b := range s.Boxes {
				for _, h := range []float64{b.BaseHue, b.Hue, b.EdgeHue} {
					assert.GreaterOrEqual(t, h, 0.0)
					assert.Less(t, h, 1.0)
				}
			}
			assert.GreaterOrEqual(t, s.TunnelHue, 0.0)
			assert.Less(t, s.TunnelHue, 1.0)
		}
	}
}

func TestAdvanceSpinsBoxes(t *testing.T) {
	s, err := Build(path.Default(), smallOpts(3), rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	b := s.Boxes[0]
	start := b.Rot
	s.Advance(0)
	s.Advance(0.016)
	assert.InDelta(t, float64(start.Y)+2*Neon.RotSpeed, float64(b.Rot.Y), 1e-5)
	assert.InDelta(t, float64(start.X)+Neon.RotSpeed, float64(b.Rot.X), 1e-5)
	assert.Equal(t, start.Z, b.Rot.Z)
	assert.Equal(t, b.Rot, s.Graph.Get(b.Mesh).Rot)
	assert.InDelta(t, Wrap01(b.Hue+0.5), s.Graph.Get(b.Edge).Hue, 1e-12)
}

func TestSetPresetRecomputesBaseHue(t *testing.T) {
	s, err := Build(path.Default(), smallOpts(5), rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	s.SetPreset(Ember)
	for _, b := range s.Boxes {
		assert.InDelta(t, Wrap01(b.Param*0.8+0.5), b.BaseHue, 1e-12)
	}
}

func TestTubeEdges(t *testing.T) {
	tube := BuildTube(path.Default(), 0.65, 222, 16)
	require.Len(t, tube.Rings, 222)
	edges := tube.Edges()
	assert.GreaterOrEqual(t, len(edges), 222*16)
	assert.LessOrEqual(t, len(edges), 2*222*16)

	p := path.Default()
	for i, ring := range tube.Rings {
		c := p.PointAt(float64(i) / 222)
		for _, v := range ring {
			assert.InDelta(t, 0.65, v.Sub(c).Length(), 1e-3)
		}
	}
}

// squareTube lays rings around a 4x4 square in the XZ plane, side rings per
// side, mitered at the corners.
func squareTube(side, radial int) *Tube {
	corners := []mat32.Vec3{
		mat32.NewVec3(0, 0, 0), mat32.NewVec3(4, 0, 0),
		mat32.NewVec3(4, 0, 4), mat32.NewVec3(0, 0, 4),
	}
	up := mat32.NewVec3(0, 1, 0)
	t := &Tube{Radius: 0.5, Radial: radial, Tubular: 4 * side}
	for k := range corners {
		a, b := corners[k], corners[(k+1)%4]
		in := a.Sub(corners[(k+3)%4]).Normal()
		out := b.Sub(a).Normal()
		for s := 0; s < side; s++ {
			c := a.Add(b.Sub(a).MulScalar(float32(s) / float32(side)))
			tan := out
			if s == 0 {
				tan = in.Add(out).Normal()
			}
			bin := tan.Cross(up).Normal()
			ring := make([]mat32.Vec3, radial)
			for j := range ring {
				th := float64(j) / float64(radial) * 2 * math.Pi
				ring[j] = c.Add(up.MulScalar(float32(math.Cos(th)) * t.Radius)).
					Add(bin.MulScalar(float32(math.Sin(th)) * t.Radius))
			}
			t.Rings = append(t.Rings, ring)
		}
	}
	return t
}

func TestTubeDropsFlatRings(t *testing.T) {
	tube := squareTube(4, 8)
	for i := range tube.Rings {
		for j := 0; j < tube.Radial; j++ {
			switch i % 4 {
			case 0:
				assert.True(t, tube.creased(i, j), "corner ring %d edge %d", i, j)
			case 2:
				assert.False(t, tube.creased(i, j), "straight ring %d edge %d", i, j)
			}
		}
	}

	rails, rings := 0, 0
	for _, s := range tube.Edges() {
		if isRail(tube, s) {
			rails++
		} else {
			rings++
		}
	}
	assert.Equal(t, 16*8, rails)
	assert.GreaterOrEqual(t, rings, 4*8)
	assert.LessOrEqual(t, rings, 16*8-4*8)
}

func isRail(tube *Tube, s Segment) bool {
	for i, ring := range tube.Rings {
		next := tube.Rings[(i+1)%tube.Tubular]
		for j := range ring {
			if ring[j] == s.A && next[j] == s.B {
				return true
			}
		}
	}
	return false
}

func TestTubeSeamMatches(t *testing.T) {
	// the frame after the last ring must line up with ring 0
	tan, nrm, _ := frames(path.Default(), 100)
	assert.Greater(t, nrm[0].Dot(nrm[100]), float32(0.999))
	assert.Greater(t, tan[0].Dot(tan[100]), float32(0.999))
}

func TestBoxGeometry(t *testing.T) {
	assert.Len(t, BoxEdges(0.06), 12)
	w := BoxWireframe(0.06)
	assert.Len(t, w, 18)
	for _, s := range BoxEdges(0.06) {
		assert.InDelta(t, 0.06, s.A.Sub(s.B).Length(), 1e-6)
	}
}

func TestWrap01(t *testing.T) {
	for _, h := range []float64{-2.5, -1, -1e-18, 0, 0.3, 1, 1.5, 99.99, math.NaN(), math.Inf(1)} {
		w := Wrap01(h)
		assert.GreaterOrEqual(t, w, 0.0, "h=%v", h)
		assert.Less(t, w, 1.0, "h=%v", h)
	}
	assert.InDelta(t, 0.75, Wrap01(-0.25), 1e-12)
}

func TestHSLPrimaries(t *testing.T) {
	red := HSL(0, 1, 0.5)
	assert.InDelta(t, 1, red.R, 1e-4)
	assert.InDelta(t, 0, red.G, 1e-4)
	green := HSL(1.0/3, 1, 0.5)
	assert.InDelta(t, 1, green.G, 1e-4)
	a, b := HSL(0.2, 1, 0.5), HSL(1.2, 1, 0.5)
	assert.InDelta(t, a.R, b.R, 1e-5)
	assert.InDelta(t, a.G, b.G, 1e-5)
	assert.InDelta(t, a.B, b.B, 1e-5)
}

func TestPresetLookup(t *testing.T) {
	p, err := PresetByName("EMBER")
	require.NoError(t, err)
	assert.Equal(t, "ember", p.Name)
	_, err = PresetByName("nope")
	assert.Error(t, err)
	assert.Equal(t, []string{"ember", "neon"}, PresetNames())
}

func TestWorldSegments(t *testing.T) {
	o := &Object{Segments: BoxEdges(2), Pos: mat32.NewVec3(10, 0, 0)}
	ws := o.WorldSegments(nil)
	require.Len(t, ws, 12)
	for _, s := range ws {
		assert.InDelta(t, 10, s.A.X, 1.0001)
	}

	// a quarter turn about Y sends +X to -Z
	o = &Object{Segments: []Segment{{A: mat32.NewVec3(1, 0, 0), B: mat32.NewVec3(1, 0, 0)}}, Rot: mat32.NewVec3(0, math.Pi/2, 0)}
	ws = o.WorldSegments(nil)
	assert.InDelta(t, 0, ws[0].A.X, 1e-5)
	assert.InDelta(t, -1, ws[0].A.Z, 1e-5)

	o.Identity = true
	assert.Equal(t, o.Segments, o.WorldSegments(nil))
}
