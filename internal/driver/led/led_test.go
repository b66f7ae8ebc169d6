package led

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/nrzled"

	"github.com/coreman2200/funtimes-wormhole/internal/layout"
	"github.com/coreman2200/funtimes-wormhole/internal/render"
)

func panel() layout.Layout {
	return layout.Layout{Dim: layout.Dim{X: 4, Y: 2}, Order: layout.Serpentine{XFlipEveryRow: true}}
}

func TestWriteReachesSPI(t *testing.T) {
	buf := bytes.Buffer{}
	o := nrzled.Opts{NumPixels: panel().Count(), Channels: 3, Freq: 2500 * physic.KiloHertz}
	dev, err := nrzled.NewSPI(spitest.NewRecordRaw(&buf), &o)
	if err != nil {
		t.Fatal(err)
	}
	d, err := New(dev, panel(), "GRB")
	require.NoError(t, err)

	f := render.NewFrame(16, 8)
	require.NoError(t, d.Write(f))
	dark := append([]byte(nil), buf.Bytes()...)
	require.NotEmpty(t, dark)

	buf.Reset()
	f.Fill(render.Color{R: 1, G: 1, B: 1})
	require.NoError(t, d.Write(f))
	assert.Equal(t, len(dark), buf.Len())
	assert.NotEqual(t, dark, buf.Bytes())
}

// drawer records the last image it was given.
type drawer struct {
	last *image.NRGBA
	n    int
}

func (d *drawer) String() string          { return "drawer" }
func (d *drawer) Halt() error             { return nil }
func (d *drawer) ColorModel() color.Model { return color.NRGBAModel }
func (d *drawer) Bounds() image.Rectangle { return image.Rect(0, 0, d.n, 1) }
func (d *drawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.last = src.(*image.NRGBA)
	return nil
}

var _ display.Drawer = (*drawer)(nil)

func TestSerpentineAndOrder(t *testing.T) {
	rec := &drawer{n: 8}
	d, err := New(rec, panel(), "RGB")
	require.NoError(t, err)

	// left column red, rest black, at panel resolution
	f := render.NewFrame(4, 2)
	f.Set(0, 0, render.Color{R: 1})
	f.Set(0, 1, render.Color{R: 1})
	require.NoError(t, d.Write(f))

	px := func(i int) []uint8 { return rec.last.Pix[i*4 : i*4+3] }
	lit := func(i int) bool { p := px(i); return p[0] < 8 && p[1] > 247 && p[2] < 8 }
	dark := func(i int) bool { p := px(i); return p[0] < 8 && p[1] < 8 && p[2] < 8 }
	// RGB strip: red must travel in nrzled's first (G) slot
	assert.True(t, lit(0), "%v", px(0))
	assert.True(t, dark(1), "%v", px(1))
	// second row runs backwards, so its x=0 is the last LED
	assert.True(t, lit(7), "%v", px(7))
	assert.True(t, dark(4), "%v", px(4))
}

func TestParseOrder(t *testing.T) {
	o, err := parseOrder("")
	require.NoError(t, err)
	assert.Equal(t, [3]int{0, 1, 2}, o)
	_, err = parseOrder("RGBW")
	assert.Error(t, err)
	_, err = parseOrder("RXB")
	assert.Error(t, err)
}

func TestEmptyPanel(t *testing.T) {
	_, err := New(&drawer{}, layout.Layout{}, "")
	assert.ErrorIs(t, err, ErrEmptyPanel)
}
