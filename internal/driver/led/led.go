// Package led drives a WS2812 panel over SPI through periph.io. Frames are
// scaled down to the panel, reordered along the serpentine wiring and
// handed to the nrzled encoder. Without an SPI port the panel is printed to
// the console instead.
package led

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-wormhole/internal/config"
	"github.com/coreman2200/funtimes-wormhole/internal/layout"
	"github.com/coreman2200/funtimes-wormhole/internal/render"
)

var ErrEmptyPanel = errors.New("led: panel has no pixels")

type Driver struct {
	Layout layout.Layout
	// Sim is true when output goes to the console rather than SPI.
	Sim bool

	dev   display.Drawer
	port  io.Closer
	order [3]int // source channel for each nrzled slot (R, G, B)

	img   *image.RGBA
	panel *image.RGBA
	rgb   []byte
	wire  []byte
	strip *image.NRGBA
}

// Open initializes periph and the SPI port named in cfg, falling back to the
// console when there is none.
func Open(cfg config.LED) (*Driver, error) {
	l := layout.Layout{
		Dim:   layout.Dim{X: cfg.Dim.X, Y: cfg.Dim.Y},
		Order: layout.Serpentine{XFlipEveryRow: cfg.XFlipEveryRow},
	}
	if l.Count() <= 0 {
		return nil, ErrEmptyPanel
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph init: %w", err)
	}
	port, err := spireg.Open(cfg.SPI.Dev)
	if err != nil {
		log.Warn().Err(err).Str("dev", cfg.SPI.Dev).Msg("no SPI port; printing the panel at the console")
		d, err := New(screen.New(l.Count()), l, cfg.ColorOrder)
		if err != nil {
			return nil, err
		}
		d.Sim = true
		return d, nil
	}

	hz := cfg.SPI.SpeedHz
	if hz <= 0 {
		hz = 2500000
	}
	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: l.Count(),
		Channels:  3,
		Freq:      physic.Frequency(hz) * physic.Hertz,
	})
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	_ = dev.Halt()
	d, err := New(dev, l, cfg.ColorOrder)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	d.port = port
	return d, nil
}

// New wraps an already opened drawer. colorOrder is the strip's byte order,
// "GRB" (what nrzled sends) when empty.
func New(dev display.Drawer, l layout.Layout, colorOrder string) (*Driver, error) {
	if l.Count() <= 0 {
		return nil, ErrEmptyPanel
	}
	order, err := parseOrder(colorOrder)
	if err != nil {
		return nil, err
	}
	return &Driver{
		Layout: l,
		dev:    dev,
		order:  order,
		panel:  image.NewRGBA(image.Rect(0, 0, l.Dim.X, l.Dim.Y)),
		rgb:    make([]byte, l.Count()*3),
		wire:   make([]byte, l.Count()*3),
		strip:  image.NewNRGBA(image.Rect(0, 0, l.Count(), 1)),
	}, nil
}

// parseOrder maps a strip color order onto nrzled's fixed GRB output: for
// each of the R, G, B slots of the image it returns which frame channel to
// put there so the strip receives its own order.
func parseOrder(s string) ([3]int, error) {
	if s == "" {
		s = "GRB"
	}
	if len(s) != 3 {
		return [3]int{}, fmt.Errorf("led: bad color order %q", s)
	}
	idx := map[byte]int{'R': 0, 'G': 1, 'B': 2}
	// nrzled sends G first, then R, then B
	var wire [3]int
	for i := 0; i < 3; i++ {
		c, ok := idx[s[i]]
		if !ok {
			return [3]int{}, fmt.Errorf("led: bad color order %q", s)
		}
		wire[i] = c
	}
	// wire[0] goes out in the G slot, wire[1] in R, wire[2] in B
	return [3]int{wire[1], wire[0], wire[2]}, nil
}

func (d *Driver) Write(f *render.Frame) error {
	d.img = f.Image(d.img)
	draw.CatmullRom.Scale(d.panel, d.panel.Rect, d.img, d.img.Rect, draw.Src, nil)

	for y := 0; y < d.Layout.Dim.Y; y++ {
		row := d.panel.Pix[y*d.panel.Stride:]
		for x := 0; x < d.Layout.Dim.X; x++ {
			o := (y*d.Layout.Dim.X + x) * 3
			copy(d.rgb[o:o+3], row[x*4:x*4+3])
		}
	}
	d.Layout.Pack(d.wire, d.rgb)

	for i := 0; i < d.Layout.Count(); i++ {
		px := d.wire[i*3 : i*3+3]
		o := i * 4
		d.strip.Pix[o+0] = px[d.order[0]]
		d.strip.Pix[o+1] = px[d.order[1]]
		d.strip.Pix[o+2] = px[d.order[2]]
		d.strip.Pix[o+3] = 255
	}
	return d.dev.Draw(d.dev.Bounds(), d.strip, image.Point{})
}

// Close blanks the panel and releases the port.
func (d *Driver) Close() error {
	err := d.dev.Halt()
	if d.port != nil {
		if cerr := d.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
