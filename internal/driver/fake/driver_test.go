package fake

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-wormhole/internal/render"
)

func TestSummaryLine(t *testing.T) {
	var out bytes.Buffer
	d := &Driver{Out: &out}
	f := render.NewFrame(2, 1)
	f.Pix[0] = render.Color{R: 1}
	require.NoError(t, d.Write(f))
	assert.Equal(t, "[frame 0001] 2x1 avg=(0.50,0.00,0.00) first=(1.00,0.00,0.00)\n", out.String())

	require.NoError(t, d.Write(render.NewFrame(0, 0)))
	assert.True(t, strings.HasSuffix(out.String(), "[frame 0002] empty\n"))
}

func TestEvery(t *testing.T) {
	var out bytes.Buffer
	d := &Driver{Out: &out, Every: 3}
	for i := 0; i < 7; i++ {
		require.NoError(t, d.Write(render.NewFrame(1, 1)))
	}
	assert.Equal(t, 7, d.Count)
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))
}
