package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watch reloads path whenever it changes on disk and hands every config
// that validates to onChange. It watches the parent directory because
// editors usually replace the file rather than write it in place. Watch
// blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	l := log.With().Str("component", "config").Str("path", path).Logger()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			c, err := Load(path)
			if err != nil {
				l.Warn().Err(err).Msg("reload failed")
				continue
			}
			if err := c.Validate(); err != nil {
				l.Warn().Err(err).Msg("reloaded config rejected")
				continue
			}
			l.Info().Msg("config reloaded")
			onChange(c)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Warn().Err(err).Msg("watch error")
		}
	}
}

// ParamChanges lists the params whose value differs between old and next,
// including params next adds.
func ParamChanges(old, next *Config) map[string]float64 {
	out := map[string]float64{}
	for k, v := range next.Params {
		if ov, ok := old.Params[k]; !ok || ov != v {
			out[k] = v
		}
	}
	if old.Brightness != next.Brightness {
		out["Brightness"] = next.Brightness
	}
	return out
}
