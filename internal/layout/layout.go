// Package layout maps frame pixels onto the wiring order of an LED panel.
package layout

type Dim struct{ X, Y int }

type Serpentine struct {
	XFlipEveryRow bool
}

type Layout struct {
	Dim   Dim
	Order Serpentine
}

// Index maps x,y -> linear LED index (0..N-1). Row 0 is the top of the
// picture and the first row on the data line.
func (l Layout) Index(x, y int) int {
	xx := x
	if (y%2 == 1) && l.Order.XFlipEveryRow {
		xx = l.Dim.X - 1 - x
	}
	return y*l.Dim.X + xx
}

func (l Layout) Count() int {
	return l.Dim.X * l.Dim.Y
}

// Pack writes an RGB image of Dim.X*Dim.Y pixels (row-major, 3 bytes each)
// into dst in wire order. dst must hold 3*Count bytes.
func (l Layout) Pack(dst, rgb []byte) {
	for y := 0; y < l.Dim.Y; y++ {
		for x := 0; x < l.Dim.X; x++ {
			s := (y*l.Dim.X + x) * 3
			d := l.Index(x, y) * 3
			copy(dst[d:d+3], rgb[s:s+3])
		}
	}
}
