package render

// Mix blends two framebuffers (a,b) into dst using alpha (0..1).
// Channels are linear; no gamma assumed.
func Mix(dst, a, b []Color, alpha float64) {
	if alpha <= 0 {
		copy(dst, a)
		return
	}
	if alpha >= 1 {
		copy(dst, b)
		return
	}
	af := float32(1.0 - alpha)
	bf := float32(alpha)
	n := min(len(dst), len(a), len(b))
	for i := 0; i < n; i++ {
		dst[i].R = a[i].R*af + b[i].R*bf
		dst[i].G = a[i].G*af + b[i].G*bf
		dst[i].B = a[i].B*af + b[i].B*bf
	}
}

// AddScaled does dst += src*s.
func AddScaled(dst, src []Color, s float32) {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i].R += src[i].R * s
		dst[i].G += src[i].G * s
		dst[i].B += src[i].B * s
	}
}
