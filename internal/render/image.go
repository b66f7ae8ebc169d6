package render

import "image"

func to8(x float32) uint8 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return uint8(x*255 + 0.5)
}

// Image writes the frame into dst, reallocating it when the bounds differ,
// and returns it.
func (f *Frame) Image(dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Rect.Dx() != f.W || dst.Rect.Dy() != f.H {
		dst = image.NewRGBA(image.Rect(0, 0, f.W, f.H))
	}
	for y := 0; y < f.H; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < f.W; x++ {
			c := f.Pix[y*f.W+x]
			row[x*4+0] = to8(c.R)
			row[x*4+1] = to8(c.G)
			row[x*4+2] = to8(c.B)
			row[x*4+3] = 255
		}
	}
	return dst
}
