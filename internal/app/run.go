package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/funtimes-wormhole/internal/anim"
	"github.com/coreman2200/funtimes-wormhole/internal/config"
	"github.com/coreman2200/funtimes-wormhole/internal/driver/fake"
	"github.com/coreman2200/funtimes-wormhole/internal/driver/led"
	"github.com/coreman2200/funtimes-wormhole/internal/driver/snapshot"
	"github.com/coreman2200/funtimes-wormhole/internal/driver/term"
	"github.com/coreman2200/funtimes-wormhole/internal/driver/ws"
	"github.com/coreman2200/funtimes-wormhole/internal/render"
	"github.com/coreman2200/funtimes-wormhole/internal/scene"
)

// Options are the process-level settings that are not part of the config
// file.
type Options struct {
	// ConfigPath is watched for changes when the file exists.
	ConfigPath string
}

// output is an opened driver plus whatever must run beside the loop.
type output struct {
	drv    render.Driver
	w, h   int
	run    []func(ctx context.Context) error
	closer io.Closer
}

// Run opens the configured driver, builds the core and runs until ctx is
// done or the user quits.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var core *Core
	var loop *anim.Loop
	// drivers only post once the loop is running
	post := func(ev anim.Event) bool { return loop.Post(ev) }

	out, err := openOutput(cfg, post)
	if err != nil {
		return err
	}
	if out.closer != nil {
		defer func() {
			if err := out.closer.Close(); err != nil {
				log.Warn().Err(err).Str("driver", cfg.Driver).Msg("close driver")
			}
		}()
	}

	core, err = InitCore(cfg, out.drv, out.w, out.h)
	if err != nil {
		return err
	}
	if s, ok := out.drv.(*ws.Server); ok {
		s.Hub = core.Hub
	}
	loop = anim.New(anim.NewTicker(cfg.FPS), core.Step, core.Handle, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// the loop ending (quit key, source closed) ends everything else
		defer cancel()
		return loop.Run(gctx)
	})
	for _, fn := range out.run {
		fn := fn
		g.Go(func() error { return fn(gctx) })
	}
	if opts.ConfigPath != "" {
		if _, err := os.Stat(opts.ConfigPath); err == nil {
			g.Go(func() error {
				return config.Watch(gctx, opts.ConfigPath, func(next *config.Config) {
					core.Reload(next, post)
				})
			})
		}
	}
	log.Info().Str("driver", cfg.Driver).Int("fps", cfg.FPS).Strs("presets", scene.PresetNames()).Msg("running")
	return g.Wait()
}

func openOutput(cfg *config.Config, post func(anim.Event) bool) (*output, error) {
	switch cfg.Driver {
	case "term":
		d, err := term.New(nil, post)
		if err != nil {
			return nil, fmt.Errorf("terminal: %w", err)
		}
		d.Presets = scene.PresetNames()
		w, h := d.Size()
		return &output{drv: d, w: w, h: h, closer: d, run: []func(context.Context) error{d.Run}}, nil

	case "ws":
		s := ws.New(nil, post)
		srv := &http.Server{
			Addr:         cfg.Addr,
			Handler:      s.Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		serve := func(ctx context.Context) error {
			log.Info().Str("addr", cfg.Addr).Msg("HTTP server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		}
		shutdown := func(ctx context.Context) error {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		}
		return &output{drv: s, w: cfg.Width, h: cfg.Height, run: []func(context.Context) error{serve, shutdown}}, nil

	case "led":
		d, err := led.Open(cfg.LED)
		if err != nil {
			return nil, err
		}
		return &output{drv: d, w: cfg.Width, h: cfg.Height, closer: d}, nil

	case "snapshot":
		d, err := snapshot.New(cfg.Snapshot.Dir, cfg.Snapshot.Every)
		if err != nil {
			return nil, err
		}
		return &output{drv: d, w: cfg.Width, h: cfg.Height}, nil

	default:
		return &output{drv: &fake.Driver{Every: cfg.FPS}, w: cfg.Width, h: cfg.Height}, nil
	}
}
