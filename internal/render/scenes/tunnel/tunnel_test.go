package tunnel

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-wormhole/internal/path"
	"github.com/coreman2200/funtimes-wormhole/internal/render"
	"github.com/coreman2200/funtimes-wormhole/internal/scene"
)

func newTunnel(t *testing.T) *Renderer {
	t.Helper()
	o := scene.DefaultOptions()
	o.TubularSegments = 60
	o.RadialSegments = 8
	r, err := New("neon", path.Default(), o, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return r
}

func energy(f *render.Frame) float64 {
	var e float64
	for _, c := range f.Pix {
		e += float64(c.R + c.G + c.B)
	}
	return e
}

func TestRenderDrawsTunnel(t *testing.T) {
	r := newTunnel(t)
	f := render.NewFrame(64, 36)
	u := render.NewUniforms()
	r.ApplyPreset("neon", u)
	r.Render(f, 1.5, u)
	assert.Greater(t, energy(f), 0.0)
	assert.Equal(t, uint64(1), r.Ticks)
}

func TestRenderTickOrder(t *testing.T) {
	r := newTunnel(t)
	ctx := r.Context()
	f := render.NewFrame(32, 18)
	u := render.NewUniforms()

	box := ctx.Scene.Boxes[0]
	rot0 := box.Rot

	r.Render(f, 2, u)

	// camera sits on the rig pose for this instant
	want := ctx.Rig.Update(2000)
	assert.Equal(t, want.Pos, ctx.Camera.Pos)
	assert.Equal(t, want.LookAt, ctx.Camera.Target)

	// boxes advanced once, hue follows t
	assert.InDelta(t, float64(rot0.Y)+scene.Neon.RotSpeed, float64(box.Rot.Y), 1e-5)
	assert.InDelta(t, scene.Wrap01(box.BaseHue+2*scene.Neon.HueSpeed+box.PhaseOffset), box.Hue, 1e-12)
}

func TestOrbitDragIsOverriddenNextTick(t *testing.T) {
	r := newTunnel(t)
	ctx := r.Context()
	f := render.NewFrame(32, 18)
	u := render.NewUniforms()

	r.Drag(400, 200)
	r.Render(f, 1, u)
	moved := ctx.Rig.Update(1000).Pos != ctx.Camera.Pos
	assert.True(t, moved, "orbit nudges the camera after drawing")

	r.Render(f, 1, u)
	// the next tick re-poses before drawing; orbit moves it again only by the damped remainder
	assert.NotEqual(t, ctx.Rig.Update(1000).Pos, ctx.Camera.Pos)
	ctx.Orbit.Disabled = true
	r.Render(f, 1, u)
	assert.Equal(t, ctx.Rig.Update(1000).Pos, ctx.Camera.Pos)
}

func TestApplyPresetSwitchesLook(t *testing.T) {
	r := newTunnel(t)
	u := render.NewUniforms()
	r.ApplyPreset("ember", u)
	assert.Equal(t, "ember", r.Preset().Name)
	assert.Equal(t, scene.Ember.TimeScale, r.Context().Rig.TimeScale)
	assert.Equal(t, 2.0, u.Params["BloomStrength"])
	assert.Equal(t, 0.25, u.Params["FogDensity"])

	r.ApplyPreset("bogus", u)
	assert.Equal(t, "ember", r.Preset().Name, "unknown preset ignored")
}

func TestResizeUpdatesAspect(t *testing.T) {
	r := newTunnel(t)
	r.Resize(100, 50)
	assert.InDelta(t, 2, r.Context().Camera.Aspect, 1e-6)

	// frames of a different shape also fix the aspect
	r.Render(render.NewFrame(30, 30), 0, render.NewUniforms())
	assert.InDelta(t, 1, r.Context().Camera.Aspect, 1e-6)
}

func TestNegativeBoxesRejected(t *testing.T) {
	o := scene.DefaultOptions()
	o.NumBoxes = -3
	_, err := New("x", path.Default(), o, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, scene.ErrNegativeCount)
}
