// Package app wires the tunnel renderers, engine, playlist, animation loop
// and an output driver into a running program.
package app

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-wormhole/internal/anim"
	"github.com/coreman2200/funtimes-wormhole/internal/config"
	diag "github.com/coreman2200/funtimes-wormhole/internal/diagnostics"
	"github.com/coreman2200/funtimes-wormhole/internal/path"
	"github.com/coreman2200/funtimes-wormhole/internal/render"
	"github.com/coreman2200/funtimes-wormhole/internal/render/post"
	"github.com/coreman2200/funtimes-wormhole/internal/render/scenes/tunnel"
	"github.com/coreman2200/funtimes-wormhole/internal/scene"
	"github.com/coreman2200/funtimes-wormhole/internal/sequence"
)

// Core is the running show. Everything except Reload runs on the loop
// goroutine.
type Core struct {
	Eng  *render.Engine
	Reg  *render.Registry
	Seq  *sequence.Player
	Hub  *diag.Hub
	Path *path.Path

	// cfg belongs to Reload's goroutine once the loop runs.
	cfg *config.Config
	// params are user overrides (config params and SetParam events). They
	// win over whatever a preset sets.
	params map[string]float64
	prev   time.Duration
	log    zerolog.Logger
}

// orbiter is implemented by renderers with a user camera control.
type orbiter interface {
	Drag(dx, dy float32)
	Zoom(delta float32)
}

func applyPostDefaults(eng *render.Engine, cfg *config.Config) {
	if cfg.Driver != "led" {
		eng.SetParam("PreviewMode", 1)
		return
	}
	pw := cfg.LED.Power
	params := map[string]float64{
		"LEDChan_mA":  20,
		"LimiterKnee": 0.9,
		"WhiteCap":    2.2,
		"ExposureEV":  0,
	}
	if pw.LimitAmps > 0 {
		params["Budget_mA"] = pw.LimitAmps * 1000
	}
	if pw.WhiteCap > 0 {
		params["WhiteCap"] = pw.WhiteCap * 3
	}
	if pw.ChanMA > 0 {
		params["LEDChan_mA"] = pw.ChanMA
	}
	for k, v := range params {
		eng.SetParam(k, v)
	}
}

// InitCore builds one tunnel renderer per preset along the default path, so
// a crossfade between presets mixes two independent scenes, and starts on
// cfg.Preset. w and h are the frame size the driver wants.
func InitCore(cfg *config.Config, drv render.Driver, w, h int) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	p := path.Default()
	reg := render.NewRegistry()
	for _, name := range scene.PresetNames() {
		pr, _ := scene.PresetByName(name)
		opts := scene.DefaultOptions()
		opts.NumBoxes = cfg.NumBoxes
		opts.Preset = pr
		r, err := tunnel.New(name, p, opts, rng)
		if err != nil {
			return nil, err
		}
		reg.Register(r)
	}

	start, err := scene.PresetByName(cfg.Preset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	rr, _ := reg.Get(start.Name)

	eng, err := render.NewEngine(w, h, drv, rr, render.NewUniforms())
	if err != nil {
		return nil, err
	}
	eng.SetPost(post.ForDriver(cfg.Driver))
	eng.ApplyPreset(start.Name)
	applyPostDefaults(eng, cfg)
	eng.SetParam("Brightness", cfg.Brightness)

	c := &Core{
		Eng:    eng,
		Reg:    reg,
		Hub:    diag.NewHub(),
		Path:   p,
		cfg:    cfg,
		params: make(map[string]float64, len(cfg.Params)),
		log:    log.With().Str("component", "app").Logger(),
	}
	for k, v := range cfg.Params {
		c.params[k] = v
	}
	c.keepOverrides(eng.UActive)
	c.Seq = sequence.NewPlayer(c.hooks())

	if cfg.Program != "" {
		prog, err := sequence.LoadProgram(cfg.Program)
		if err != nil {
			return nil, fmt.Errorf("program %s: %w", cfg.Program, err)
		}
		if err := c.Seq.Load(prog); err != nil {
			return nil, err
		}
		c.Seq.Start()
	}
	c.log.Info().Str("preset", start.Name).Int64("seed", seed).Int("boxes", cfg.NumBoxes).
		Int("w", w).Int("h", h).Msg("core ready")
	return c, nil
}

// hooks connect the playlist to the engine.
func (c *Core) hooks() sequence.Hooks {
	eng, reg := c.Eng, c.Reg
	return sequence.Hooks{
		SetRenderer: func(name, preset string) {
			if err := eng.SetRenderer(name, preset, reg); err != nil {
				c.report(diag.Warn, "SEQ.RENDERER", err)
				return
			}
			c.keepOverrides(eng.UActive)
		},
		ArmNext: func(name, preset string) {
			// fading a scene into itself would render it twice per frame;
			// cut to the preset instead
			if eng.RActive != nil && eng.RActive.Name() == name {
				eng.RActive.ApplyPreset(preset, eng.UActive)
				c.keepOverrides(eng.UActive)
				return
			}
			if err := eng.ArmNext(name, preset, reg); err != nil {
				c.report(diag.Warn, "SEQ.ARM", err)
				return
			}
			c.keepOverrides(eng.UNext)
		},
		SetCrossfade: eng.SetCrossfade,
		SetParam:     eng.SetParam,
		SetBool:      eng.SetBool,
		OnClip: func(i int, clip sequence.Clip) {
			c.log.Info().Int("clip", i).Str("name", clip.Name).Str("renderer", clip.Renderer).Msg("clip")
		},
	}
}

// Step renders one frame; it is the loop's StepFunc.
func (c *Core) Step(elapsed time.Duration) error {
	dt := (elapsed - c.prev).Seconds()
	c.prev = elapsed
	c.Seq.Tick(dt)

	err := c.Eng.RenderOnce(elapsed.Seconds())
	alpha, _ := c.Eng.Crossfade()
	name := ""
	if c.Eng.RActive != nil {
		name = c.Eng.RActive.Name()
	}
	c.Hub.Frame(diag.Stats{
		FrameID:   c.Eng.Last.Frames,
		RenderMS:  c.Eng.Last.RenderMS,
		PostMS:    c.Eng.Last.PostMS,
		TotalMS:   c.Eng.Last.TotalMS,
		Renderer:  name,
		Crossfade: alpha,
	})
	return err
}

// Handle applies a host event; it is the loop's Handler.
func (c *Core) Handle(ev anim.Event) {
	switch e := ev.(type) {
	case anim.Resize:
		c.Eng.Resize(e.W, e.H)
	case anim.Drag:
		if o, ok := c.Eng.RActive.(orbiter); ok {
			o.Drag(e.DX, e.DY)
		}
	case anim.Zoom:
		if o, ok := c.Eng.RActive.(orbiter); ok {
			o.Zoom(e.Delta)
		}
	case anim.SetPreset:
		pr, err := scene.PresetByName(e.Name)
		if err != nil {
			c.report(diag.Warn, "PRESET.UNKNOWN", err)
			return
		}
		if err := c.Eng.SetRenderer(pr.Name, pr.Name, c.Reg); err != nil {
			c.report(diag.Warn, "PRESET.SWITCH", err)
			return
		}
		c.keepOverrides(c.Eng.UActive)
		c.Seq.Stop()
		c.log.Info().Str("preset", pr.Name).Msg("preset")
	case anim.SetParam:
		c.params[e.Name] = e.Value
		c.Eng.SetParam(e.Name, e.Value)
		if c.Eng.RNext != nil {
			c.keepOverrides(c.Eng.UNext)
		}
	}
}

// keepOverrides writes the user's params over u, after a preset has been
// applied to it.
func (c *Core) keepOverrides(u *render.Uniforms) {
	if u == nil || len(c.params) == 0 {
		return
	}
	if u.Params == nil {
		u.Params = make(map[string]float64, len(c.params))
	}
	for k, v := range c.params {
		u.Params[k] = v
	}
}

// Reload turns a changed config into events for poster. It runs on the
// config watcher's goroutine and only touches its own copy of the config.
func (c *Core) Reload(next *config.Config, poster func(anim.Event) bool) {
	for k, v := range config.ParamChanges(c.cfg, next) {
		poster(anim.SetParam{Name: k, Value: v})
	}
	if next.Preset != c.cfg.Preset {
		poster(anim.SetPreset{Name: next.Preset})
	}
	c.cfg = next
}

func (c *Core) report(sev diag.Severity, code string, err error) {
	c.log.Warn().Err(err).Str("code", code).Msg("core")
	c.Hub.Push(diag.Diagnostic{Severity: sev, Code: code, Summary: err.Error()})
}
