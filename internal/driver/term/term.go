// Package term presents frames in a true-color terminal. Every cell shows
// two vertically stacked pixels with the upper half block glyph, so a frame
// is cols x 2*rows pixels.
package term

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/coreman2200/funtimes-wormhole/internal/anim"
	"github.com/coreman2200/funtimes-wormhole/internal/render"
)

const upperHalf = '▀'

// Sink receives host events; anim.Loop.Post fits.
type Sink func(anim.Event) bool

type Driver struct {
	scr  tcell.Screen
	sink Sink

	// Presets are selected with the digit keys 1..9.
	Presets []string

	mu       sync.Mutex
	dragging bool
	lastX    int
	lastY    int
}

// New takes over the terminal. Pass a nil screen to open the real one.
func New(scr tcell.Screen, sink Sink) (*Driver, error) {
	if scr == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, err
		}
		scr = s
	}
	if err := scr.Init(); err != nil {
		return nil, err
	}
	scr.EnableMouse()
	scr.HideCursor()
	scr.Clear()
	if sink == nil {
		sink = func(anim.Event) bool { return true }
	}
	return &Driver{scr: scr, sink: sink}, nil
}

// Size is the frame size that fills the terminal.
func (d *Driver) Size() (w, h int) {
	cols, rows := d.scr.Size()
	return cols, rows * 2
}

func (d *Driver) Write(f *render.Frame) error {
	cols, rows := d.scr.Size()
	cols = min(cols, f.W)
	rows = min(rows, (f.H+1)/2)
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			top := f.At(cx, cy*2)
			bot := f.At(cx, cy*2+1)
			st := tcell.StyleDefault.Foreground(rgb(top)).Background(rgb(bot))
			d.scr.SetContent(cx, cy, upperHalf, nil, st)
		}
	}
	d.scr.Show()
	return nil
}

func rgb(c render.Color) tcell.Color {
	return tcell.NewRGBColor(int32(to8(c.R)), int32(to8(c.G)), int32(to8(c.B)))
}

func to8(x float32) uint8 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return uint8(x * 255)
}

// Run forwards terminal input to the sink until ctx is done or the screen
// is closed.
func (d *Driver) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		// wakes PollEvent
		_ = d.scr.PostEvent(tcell.NewEventInterrupt(nil))
	}()
	for {
		ev := d.scr.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return nil
		}
		if d.handle(ev) {
			return nil
		}
	}
}

// handle translates one tcell event. It reports true on quit.
func (d *Driver) handle(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventResize:
		w, h := e.Size()
		d.sink(anim.Resize{W: w, H: h * 2})
		d.scr.Sync()
	case *tcell.EventKey:
		switch {
		case e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC:
			d.sink(anim.Quit{})
			return true
		case e.Key() == tcell.KeyRune && e.Rune() == 'q':
			d.sink(anim.Quit{})
			return true
		case e.Key() == tcell.KeyRune && e.Rune() >= '1' && e.Rune() <= '9':
			if i := int(e.Rune() - '1'); i < len(d.Presets) {
				d.sink(anim.SetPreset{Name: d.Presets[i]})
			}
		case e.Key() == tcell.KeyRune && (e.Rune() == '+' || e.Rune() == '='):
			d.sink(anim.Zoom{Delta: -1})
		case e.Key() == tcell.KeyRune && e.Rune() == '-':
			d.sink(anim.Zoom{Delta: 1})
		}
	case *tcell.EventMouse:
		d.mouse(e)
	}
	return false
}

func (d *Driver) mouse(e *tcell.EventMouse) {
	x, y := e.Position()
	b := e.Buttons()
	switch {
	case b&tcell.WheelUp != 0:
		d.sink(anim.Zoom{Delta: -1})
		return
	case b&tcell.WheelDown != 0:
		d.sink(anim.Zoom{Delta: 1})
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if b&tcell.Button1 == 0 {
		d.dragging = false
		return
	}
	if d.dragging {
		dx := float32(x - d.lastX)
		dy := float32(y-d.lastY) * 2
		if dx != 0 || dy != 0 {
			d.sink(anim.Drag{DX: dx, DY: dy})
		}
	}
	d.dragging = true
	d.lastX, d.lastY = x, y
}

// Close restores the terminal.
func (d *Driver) Close() error {
	d.scr.Fini()
	return nil
}
