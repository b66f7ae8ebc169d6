// wormholesim renders a fixed number of frames as fast as it can, without a
// terminal or hardware, and optionally saves them as PNGs.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-wormhole/internal/anim"
	"github.com/coreman2200/funtimes-wormhole/internal/app"
	"github.com/coreman2200/funtimes-wormhole/internal/config"
	"github.com/coreman2200/funtimes-wormhole/internal/driver/fake"
	"github.com/coreman2200/funtimes-wormhole/internal/driver/snapshot"
	"github.com/coreman2200/funtimes-wormhole/internal/render"
)

func main() {
	var (
		frames  = flag.Int("frames", 240, "frames to render")
		fps     = flag.Int("fps", 60, "simulated frames per second")
		width   = flag.Int("width", 320, "frame width")
		height  = flag.Int("height", 180, "frame height")
		preset  = flag.String("preset", "neon", "preset")
		seed    = flag.Int64("seed", 1, "scene seed")
		boxes   = flag.Int("boxes", 66, "number of boxes")
		program = flag.String("program", "", "playlist YAML to play")
		out     = flag.String("out", "", "directory for PNG frames; empty prints a summary line")
		every   = flag.Int("every", 10, "save or print every Nth frame")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg := config.Default()
	cfg.Driver = "fake"
	cfg.FPS, cfg.Width, cfg.Height = *fps, *width, *height
	cfg.Preset, cfg.Seed, cfg.NumBoxes, cfg.Program = *preset, *seed, *boxes, *program

	var drv render.Driver = &fake.Driver{Every: *every}
	if *out != "" {
		cfg.Driver = "snapshot"
		cfg.Snapshot.Dir, cfg.Snapshot.Every = *out, *every
		d, err := snapshot.New(*out, *every)
		if err != nil {
			log.Fatal().Err(err).Str("dir", *out).Msg("snapshot dir")
		}
		drv = d
	}

	core, err := app.InitCore(cfg, drv, cfg.Width, cfg.Height)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}

	dt := time.Second / time.Duration(max(1, *fps))
	t0 := time.Now()
	loop := anim.New(anim.NewFixed(t0, *frames, dt), core.Step, core.Handle, 0)
	// simulated time starts with the first frame, not the wall clock
	loop.Clock = func() time.Time { return t0 }

	start := time.Now()
	if err := loop.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("run")
	}
	wall := time.Since(start)
	log.Info().
		Uint64("frames", loop.Ticks()).
		Dur("wall", wall).
		Float64("fps", float64(loop.Ticks())/wall.Seconds()).
		Float64("last_render_ms", core.Eng.Last.RenderMS).
		Float64("last_post_ms", core.Eng.Last.PostMS).
		Msg("done")
}
