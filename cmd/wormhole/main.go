package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-wormhole/internal/app"
	"github.com/coreman2200/funtimes-wormhole/internal/config"
)

func main() {
	// ---- Flags (config.yaml overrides them where it sets a value) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		driver     = flag.String("driver", "term", "driver: term | ws | led | snapshot | fake")
		fps        = flag.Int("fps", 60, "target frames per second")
		width      = flag.Int("width", 160, "frame width in pixels (term uses the window)")
		height     = flag.Int("height", 90, "frame height in pixels")
		preset     = flag.String("preset", "neon", "starting preset")
		addr       = flag.String("addr", ":8080", "HTTP listen address for the ws driver")
		seed       = flag.Int64("seed", 0, "scene seed; 0 seeds from the clock")
		logPath    = flag.String("log", "wormhole.log", "log file used while the terminal driver owns the screen")
		simOnly    = flag.Bool("sim-only", false, "force a headless run (no terminal or hardware output)")
		writeCfg   = flag.String("write-config", "", "write the effective config as YAML to this path and exit")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config: defaults <- flags <- config.yaml ----
	cfg := config.Default()
	cfg.Driver, cfg.FPS, cfg.Preset, cfg.Addr, cfg.Seed = *driver, *fps, *preset, *addr, *seed
	cfg.Width, cfg.Height = *width, *height
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = overlay(cfg, c)
	}
	if *simOnly {
		cfg.Driver = "fake"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}
	if *writeCfg != "" {
		if err := config.Save(*writeCfg, cfg); err != nil {
			log.Fatal().Err(err).Str("path", *writeCfg).Msg("write config")
		}
		log.Info().Str("path", *writeCfg).Msg("config written")
		return
	}

	if cfg.Driver == "term" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		var w io.Writer = io.Discard
		if err == nil {
			defer f.Close()
			w = f
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true})
	}

	// ---- Run until a signal or quit ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, app.Options{ConfigPath: *configPath}); err != nil {
		log.Error().Err(err).Msg("wormhole stopped")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("bye")
}

// overlay returns file with the flag values kept wherever the file only
// carries the default.
func overlay(base, file *config.Config) *config.Config {
	out := *file
	def := config.Default()
	if file.Driver == def.Driver {
		out.Driver = base.Driver
	}
	if file.FPS == def.FPS {
		out.FPS = base.FPS
	}
	if file.Width == def.Width {
		out.Width = base.Width
	}
	if file.Height == def.Height {
		out.Height = base.Height
	}
	if file.Preset == def.Preset {
		out.Preset = base.Preset
	}
	if file.Addr == def.Addr {
		out.Addr = base.Addr
	}
	if file.Seed == 0 {
		out.Seed = base.Seed
	}
	return &out
}
