package fake

import (
	"fmt"
	"io"
	"os"

	"github.com/coreman2200/funtimes-wormhole/internal/render"
)

// Driver prints a compact summary of the frame (first pixel & avg), useful for headless runs.
type Driver struct {
	Count int
	// Every prints one line per Every frames; 0 or 1 prints all.
	Every int
	Out   io.Writer
}

func (d *Driver) Write(f *render.Frame) error {
	d.Count++
	if d.Every > 1 && d.Count%d.Every != 0 {
		return nil
	}
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	// compute simple average for log
	var r, g, b float64
	for _, c := range f.Pix {
		r += float64(c.R)
		g += float64(c.G)
		b += float64(c.B)
	}
	n := float64(len(f.Pix))
	if n == 0 {
		_, err := fmt.Fprintf(out, "[frame %04d] empty\n", d.Count)
		return err
	}
	first := f.Pix[0]
	_, err := fmt.Fprintf(out, "[frame %04d] %dx%d avg=(%.2f,%.2f,%.2f) first=(%.2f,%.2f,%.2f)\n",
		d.Count, f.W, f.H, r/n, g/n, b/n, first.R, first.G, first.B)
	return err
}
