package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-wormhole/internal/anim"
	"github.com/coreman2200/funtimes-wormhole/internal/config"
	"github.com/coreman2200/funtimes-wormhole/internal/render"
	"github.com/coreman2200/funtimes-wormhole/internal/render/scenes/tunnel"
)

type captureDriver struct{ frames int }

func (d *captureDriver) Write(*render.Frame) error { d.frames++; return nil }

func testConfig() *config.Config {
	c := config.Default()
	c.Driver = "fake"
	c.Seed = 7
	c.NumBoxes = 5
	c.Width, c.Height = 48, 27
	return c
}

func newCore(t *testing.T, cfg *config.Config) (*Core, *captureDriver) {
	t.Helper()
	drv := &captureDriver{}
	c, err := InitCore(cfg, drv, cfg.Width, cfg.Height)
	require.NoError(t, err)
	return c, drv
}

func TestInitCoreRegistersPresets(t *testing.T) {
	c, _ := newCore(t, testConfig())
	assert.Equal(t, []string{"ember", "neon"}, c.Reg.List())
	assert.Equal(t, "neon", c.Eng.RActive.Name())
	assert.Equal(t, 1.0, c.Eng.UActive.Param("PreviewMode", 0))
	assert.Equal(t, 0.3, c.Eng.UActive.Param("FogDensity", 0))
}

func TestInitCoreConfigParamsWin(t *testing.T) {
	cfg := testConfig()
	cfg.Params = map[string]float64{"FogDensity": 0.1}
	c, _ := newCore(t, cfg)
	assert.Equal(t, 0.1, c.Eng.UActive.Param("FogDensity", 0))
}

func TestInitCoreErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Preset = "vapor"
	_, err := InitCore(cfg, &captureDriver{}, 8, 8)
	assert.ErrorIs(t, err, config.ErrInvalid)

	cfg = testConfig()
	cfg.NumBoxes = -1
	_, err = InitCore(cfg, &captureDriver{}, 8, 8)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestStepRendersAndReports(t *testing.T) {
	c, drv := newCore(t, testConfig())
	require.NoError(t, c.Step(0))
	require.NoError(t, c.Step(16*time.Millisecond))
	assert.Equal(t, 2, drv.frames)
	s := c.Hub.Stats()
	assert.Equal(t, uint64(2), s.FrameID)
	assert.Equal(t, "neon", s.Renderer)
}

func TestHandleEvents(t *testing.T) {
	c, _ := newCore(t, testConfig())

	c.Handle(anim.Resize{W: 64, H: 32})
	w, h := c.Eng.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, h)

	c.Handle(anim.Drag{DX: 10})
	active := c.Eng.RActive.(*tunnel.Renderer)
	assert.True(t, active.Context().Orbit.Active())

	c.Handle(anim.SetParam{Name: "BloomStrength", Value: 1.5})
	assert.Equal(t, 1.5, c.Eng.UActive.Param("BloomStrength", 0))

	c.Handle(anim.SetPreset{Name: "Ember"})
	assert.Equal(t, "ember", c.Eng.RActive.Name())

	c.Handle(anim.SetPreset{Name: "vapor"})
	assert.Equal(t, "ember", c.Eng.RActive.Name())
	require.NotEmpty(t, c.Hub.Recent())
	assert.Equal(t, "PRESET.UNKNOWN", c.Hub.Recent()[0].Code)
}

func TestProgramCrossfadesToEmber(t *testing.T) {
	dir := t.TempDir()
	prog := filepath.Join(dir, "show.yaml")
	require.NoError(t, os.WriteFile(prog, []byte(`
version: seq.v1
clips:
  - {name: a, renderer: neon, preset: neon, durationS: 1, xFadeS: 0.5}
  - {name: b, renderer: ember, preset: ember, durationS: 1}
`), 0644))
	cfg := testConfig()
	cfg.Program = prog
	c, _ := newCore(t, cfg)

	step := 100 * time.Millisecond
	for i := 1; i <= 7; i++ {
		require.NoError(t, c.Step(time.Duration(i)*step))
	}
	alpha, fading := c.Eng.Crossfade()
	assert.True(t, fading)
	assert.InDelta(t, 0.4, alpha, 1e-6)
	assert.Equal(t, "ember", c.Eng.RNext.Name())

	for i := 8; i <= 11; i++ {
		require.NoError(t, c.Step(time.Duration(i)*step))
	}
	assert.Equal(t, "ember", c.Eng.RActive.Name())
	_, fading = c.Eng.Crossfade()
	assert.False(t, fading)
}

func TestArmSameRendererCuts(t *testing.T) {
	c, _ := newCore(t, testConfig())
	h := c.hooks()
	h.ArmNext("neon", "ember")
	assert.Nil(t, c.Eng.RNext)
	assert.Equal(t, "ember", c.Eng.RActive.(*tunnel.Renderer).Preset().Name)
}

func TestReloadPostsChanges(t *testing.T) {
	c, _ := newCore(t, testConfig())
	next := testConfig()
	next.Preset = "ember"
	next.Params = map[string]float64{"BloomStrength": 2}

	var got []anim.Event
	c.Reload(next, func(ev anim.Event) bool { got = append(got, ev); return true })
	assert.Equal(t, []anim.Event{
		anim.SetParam{Name: "BloomStrength", Value: 2},
		anim.SetPreset{Name: "ember"},
	}, got)

	got = nil
	c.Reload(next, func(ev anim.Event) bool { got = append(got, ev); return true })
	assert.Empty(t, got)
}

func TestRunSnapshotDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Driver = "snapshot"
	cfg.Snapshot.Dir = filepath.Join(t.TempDir(), "frames")
	cfg.Snapshot.Every = 1
	cfg.FPS = 50

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, Run(ctx, cfg, Options{}))

	names, err := filepath.Glob(filepath.Join(cfg.Snapshot.Dir, "*.png"))
	require.NoError(t, err)
	assert.NotEmpty(t, names)
}

func TestPresetSwitchKeepsUserParams(t *testing.T) {
	cfg := testConfig()
	cfg.Params = map[string]float64{"BloomStrength": 1}
	c, _ := newCore(t, cfg)
	assert.Equal(t, 1.0, c.Eng.UActive.Param("BloomStrength", 0))

	c.Handle(anim.SetPreset{Name: "ember"})
	assert.Equal(t, 1.0, c.Eng.UActive.Param("BloomStrength", 0))
	c.Handle(anim.SetPreset{Name: "neon"})
	assert.Equal(t, 1.0, c.Eng.UActive.Param("BloomStrength", 0))

	c.Handle(anim.SetParam{Name: "FogDensity", Value: 0.05})
	h := c.hooks()
	h.SetRenderer("ember", "ember")
	assert.Equal(t, 1.0, c.Eng.UActive.Param("BloomStrength", 0))
	assert.Equal(t, 0.05, c.Eng.UActive.Param("FogDensity", 0))

	h.ArmNext("neon", "neon")
	require.NotNil(t, c.Eng.UNext)
	assert.Equal(t, 1.0, c.Eng.UNext.Param("BloomStrength", 0))
	assert.Equal(t, 0.05, c.Eng.UNext.Param("FogDensity", 0))

	h.ArmNext("ember", "neon")
	assert.Equal(t, 1.0, c.Eng.UActive.Param("BloomStrength", 0))
}

func TestZeroBrightnessBlanksFrame(t *testing.T) {
	cfg := testConfig()
	cfg.Brightness = 0
	require.NoError(t, cfg.Validate())
	c, _ := newCore(t, cfg)
	require.NoError(t, c.Step(500*time.Millisecond))

	var energy float64
	for _, px := range c.Eng.Out.Pix {
		energy += float64(px.R + px.G + px.B)
	}
	assert.InDelta(t, 0, energy, 1e-6)
}

func TestHandleIgnoresOversizeResize(t *testing.T) {
	c, _ := newCore(t, testConfig())
	assert.NotPanics(t, func() {
		c.Handle(anim.Resize{W: 1 << 31, H: 1 << 31})
	})
	w, h := c.Eng.Size()
	assert.Equal(t, 48, w)
	assert.Equal(t, 27, h)
	require.NoError(t, c.Step(0))
}
