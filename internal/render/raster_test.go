package render

import (
	"testing"

	"github.com/goki/mat32"
	"github.com/stretchr/testify/assert"
)

// orthoCam looks down -Z from the origin and maps x,y in [-1,1] straight to
// NDC. Depth is -z.
type orthoCam struct{}

func (orthoCam) Project(p mat32.Vec3) (x, y, depth float32, ok bool) {
	d := -p.Z
	return p.X, p.Y, d, d >= 0.1
}

func (orthoCam) ViewDepth(p mat32.Vec3) float32 { return -p.Z }

func lit(f *Frame) int {
	n := 0
	for _, c := range f.Pix {
		if c.R > 0 || c.G > 0 || c.B > 0 {
			n++
		}
	}
	return n
}

func TestDrawLineHorizontal(t *testing.T) {
	f := NewFrame(10, 10)
	white := Color{1, 1, 1}
	DrawLine(f, orthoCam{}, 0.1, mat32.NewVec3(-0.8, 0.05, -1), mat32.NewVec3(0.8, 0.05, -1), white, white, Fog{})
	assert.Equal(t, Color{1, 1, 1}, f.At(5, 4))
	assert.Equal(t, Color{}, f.At(5, 8))
	assert.GreaterOrEqual(t, lit(f), 8)
}

func TestDrawLineAdditive(t *testing.T) {
	f := NewFrame(4, 4)
	c := Color{0.25, 0, 0}
	a, b := mat32.NewVec3(-0.9, 0.1, -1), mat32.NewVec3(0.9, 0.1, -1)
	DrawLine(f, orthoCam{}, 0.1, a, b, c, c, Fog{})
	DrawLine(f, orthoCam{}, 0.1, a, b, c, c, Fog{})
	assert.InDelta(t, 0.5, f.At(2, 1).R, 1e-6)
}

func TestDrawLineNearClip(t *testing.T) {
	f := NewFrame(10, 10)
	white := Color{1, 1, 1}
	// entirely behind the near plane
	DrawLine(f, orthoCam{}, 0.1, mat32.NewVec3(0, 0, 1), mat32.NewVec3(0.5, 0, 0.5), white, white, Fog{})
	assert.Equal(t, 0, lit(f))

	// crossing the near plane: only the front part is drawn
	DrawLine(f, orthoCam{}, 0.1, mat32.NewVec3(0.5, 0.05, 1), mat32.NewVec3(0.5, 0.05, -1), white, white, Fog{})
	assert.Greater(t, lit(f), 0)
}

func TestDrawLineOffscreen(t *testing.T) {
	f := NewFrame(10, 10)
	white := Color{1, 1, 1}
	DrawLine(f, orthoCam{}, 0.1, mat32.NewVec3(5, 5, -1), mat32.NewVec3(9, 5, -1), white, white, Fog{})
	assert.Equal(t, 0, lit(f))

	// huge segment through the frame is clipped, not walked pixel by pixel
	DrawLine(f, orthoCam{}, 0.1, mat32.NewVec3(-1e6, 0.05, -1), mat32.NewVec3(1e6, 0.05, -1), white, white, Fog{})
	assert.Equal(t, 10, lit(f))
}

func TestFogFactor(t *testing.T) {
	fog := Fog{Density: 0.3}
	assert.Equal(t, float32(0), fog.Factor(0))
	assert.InDelta(t, 0.63212056, fog.Factor(10/3.0), 1e-5) // 1-exp(-1)
	assert.Greater(t, fog.Factor(20), fog.Factor(2))
	assert.InDelta(t, 1, fog.Factor(1000), 1e-6)

	red := Color{1, 0, 0}
	assert.Equal(t, red, Fog{}.Apply(red, 50))
	far := fog.Apply(red, 1000)
	assert.InDelta(t, 0, far.R, 1e-5)
}

func TestBloomSpreadsEnergy(t *testing.T) {
	f := NewFrame(32, 32)
	f.Set(16, 16, Color{4, 4, 4})
	u := &Uniforms{Params: map[string]float64{"BloomStrength": 1, "BloomThreshold": 0.5}}
	NewBloom().Apply(f, u)
	assert.Greater(t, f.At(16, 16).R, float32(4))
	assert.Greater(t, f.At(18, 16).R, float32(0), "glow reaches neighbours")
	assert.Greater(t, f.At(17, 16).R, f.At(24, 16).R, "falls off with distance")
}

func TestBloomRespectsThreshold(t *testing.T) {
	f := NewFrame(16, 16)
	f.Fill(Color{0.1, 0.1, 0.1})
	u := &Uniforms{Params: map[string]float64{"BloomStrength": 3, "BloomThreshold": 0.5}}
	NewBloom().Apply(f, u)
	for _, c := range f.Pix {
		assert.InDelta(t, 0.1, c.R, 1e-6)
	}
}

func TestBloomDisabledWithoutStrength(t *testing.T) {
	f := NewFrame(8, 8)
	f.Set(4, 4, Color{10, 10, 10})
	NewBloom().Apply(f, NewUniforms())
	assert.Equal(t, 1, lit(f))
}

func TestClipRect(t *testing.T) {
	t0, t1, ok := clipRect(-10, 5, 20, 5, 0, 0, 10, 10)
	assert.True(t, ok)
	assert.InDelta(t, 1.0/3, t0, 1e-6)
	assert.InDelta(t, 2.0/3, t1, 1e-6)
	_, _, ok = clipRect(-10, -5, 20, -5, 0, 0, 10, 10)
	assert.False(t, ok)
}
