package render

import "math"

// BloomLevels is the depth of the blur mip chain.
const BloomLevels = 5

var (
	bloomKernels = [BloomLevels]int{3, 5, 7, 9, 11}
	bloomFactors = [BloomLevels]float32{1.0, 0.8, 0.6, 0.4, 0.2}
)

// Bloom adds a glow around bright pixels: a luminance high pass, a chain of
// progressively halved and blurred copies, and a weighted sum of those added
// back onto the frame. Buffers are reused across frames.
//
// Params: "BloomStrength" (0 disables), "BloomThreshold", "BloomRadius".
type Bloom struct {
	bright *Frame
	mips   [BloomLevels]*Frame
	tmp    [BloomLevels]*Frame
	glow   *Frame
}

func NewBloom() *Bloom { return &Bloom{} }

// Apply runs the bloom on f in place.
func (b *Bloom) Apply(f *Frame, u *Uniforms) {
	strength := float32(u.Param("BloomStrength", 0))
	if strength <= 0 || f.W == 0 || f.H == 0 {
		return
	}
	threshold := float32(u.Param("BloomThreshold", 0.85))
	radius := float32(u.Param("BloomRadius", 0))
	b.alloc(f.W, f.H)

	highPass(b.bright, f, threshold, 0.01)

	src := b.bright
	for i := 0; i < BloomLevels; i++ {
		downsample(b.mips[i], src)
		blur(b.mips[i], b.tmp[i], bloomKernels[i])
		src = b.mips[i]
	}

	b.glow.Fill(Color{})
	for i := 0; i < BloomLevels; i++ {
		fac := bloomFactors[i]
		w := strength * (fac + (1.2-2*fac)*radius) // lerp(fac, 1.2-fac, radius)
		upsampleAdd(b.glow, b.mips[i], w)
	}
	AddScaled(f.Pix, b.glow.Pix, 1)
}

func (b *Bloom) alloc(w, h int) {
	if b.bright != nil && b.bright.W == w && b.bright.H == h {
		return
	}
	b.bright = NewFrame(w, h)
	b.glow = NewFrame(w, h)
	mw, mh := w, h
	for i := 0; i < BloomLevels; i++ {
		mw, mh = max(1, (mw+1)/2), max(1, (mh+1)/2)
		b.mips[i] = NewFrame(mw, mh)
		b.tmp[i] = NewFrame(mw, mh)
	}
}

// highPass keeps pixels whose luminance clears threshold, with a smoothstep
// of the given width.
func highPass(dst, src *Frame, threshold, width float32) {
	for i, c := range src.Pix {
		a := smoothstep(threshold, threshold+width, c.Luma())
		dst.Pix[i] = c.Scale(a)
	}
}

func smoothstep(e0, e1, x float32) float32 {
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

// downsample box-filters src into the smaller dst.
func downsample(dst, src *Frame) {
	sx := float32(src.W) / float32(dst.W)
	sy := float32(src.H) / float32(dst.H)
	for y := 0; y < dst.H; y++ {
		y0 := int(float32(y) * sy)
		y1 := min(src.H-1, int(float32(y+1)*sy-0.5))
		for x := 0; x < dst.W; x++ {
			x0 := int(float32(x) * sx)
			x1 := min(src.W-1, int(float32(x+1)*sx-0.5))
			var acc Color
			n := 0
			for yy := y0; yy <= max(y0, y1); yy++ {
				for xx := x0; xx <= max(x0, x1); xx++ {
					acc = acc.Add(src.Pix[yy*src.W+xx])
					n++
				}
			}
			dst.Pix[y*dst.W+x] = acc.Scale(1 / float32(n))
		}
	}
}

// blur runs a separable Gaussian (sigma = radius) over f using tmp.
func blur(f, tmp *Frame, radius int) {
	w := gaussWeights(radius)
	pass := func(dst, src *Frame, dx, dy int) {
		for y := 0; y < src.H; y++ {
			for x := 0; x < src.W; x++ {
				acc := src.Pix[y*src.W+x].Scale(w[0])
				for i := 1; i < len(w); i++ {
					a := clampAt(src, x+dx*i, y+dy*i)
					b := clampAt(src, x-dx*i, y-dy*i)
					acc = acc.Add(a.Add(b).Scale(w[i]))
				}
				dst.Pix[y*dst.W+x] = acc
			}
		}
	}
	pass(tmp, f, 1, 0)
	pass(f, tmp, 0, 1)
}

func gaussWeights(radius int) []float32 {
	sigma := float64(radius)
	w := make([]float32, radius)
	sum := float32(0)
	for i := range w {
		w[i] = float32(math.Exp(-0.5*float64(i*i)/(sigma*sigma)) / sigma)
		if i == 0 {
			sum += w[i]
		} else {
			sum += 2 * w[i]
		}
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

func clampAt(f *Frame, x, y int) Color {
	x = max(0, min(f.W-1, x))
	y = max(0, min(f.H-1, y))
	return f.Pix[y*f.W+x]
}

// upsampleAdd bilinearly samples src over all of dst and adds it times s.
func upsampleAdd(dst, src *Frame, s float32) {
	kx := float32(src.W) / float32(dst.W)
	ky := float32(src.H) / float32(dst.H)
	for y := 0; y < dst.H; y++ {
		fy := (float32(y)+0.5)*ky - 0.5
		y0 := int(math.Floor(float64(fy)))
		ty := fy - float32(y0)
		for x := 0; x < dst.W; x++ {
			fx := (float32(x)+0.5)*kx - 0.5
			x0 := int(math.Floor(float64(fx)))
			tx := fx - float32(x0)
			top := clampAt(src, x0, y0).Lerp(clampAt(src, x0+1, y0), tx)
			bot := clampAt(src, x0, y0+1).Lerp(clampAt(src, x0+1, y0+1), tx)
			c := top.Lerp(bot, ty).Scale(s)
			i := y*dst.W + x
			dst.Pix[i] = dst.Pix[i].Add(c)
		}
	}
}
