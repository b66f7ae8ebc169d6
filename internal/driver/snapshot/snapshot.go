// Package snapshot saves every Nth frame as a PNG.
package snapshot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/coreman2200/funtimes-wormhole/internal/render"
)

type Driver struct {
	Dir   string
	Every int

	count   int
	written int
	img     *image.RGBA
}

// New creates dir if needed. every <= 0 saves every frame.
func New(dir string, every int) (*Driver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Driver{Dir: dir, Every: max(1, every)}, nil
}

func (d *Driver) Write(f *render.Frame) error {
	n := d.count
	d.count++
	if n%d.Every != 0 {
		return nil
	}
	d.img = f.Image(d.img)
	path := filepath.Join(d.Dir, fmt.Sprintf("frame_%06d.png", n))
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, d.img); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	d.written++
	return out.Close()
}

// Written is the number of PNGs saved.
func (d *Driver) Written() int { return d.written }
