package render

import "math"

// Filmic/ACES tone map with exposure in EV and optional gamma (default 2.2).
// Reads from uniforms.Params:
//   - "ExposureEV" (default 0)
//   - "OutputGamma" (default 2.2)
func FilmicToneMap(buf []Color, u *Uniforms) {
	exposureEV := u.Param("ExposureEV", 0)
	gamma := 2.2
	if g := u.Param("OutputGamma", 2.2); g > 0 {
		gamma = g
	}
	exposure := float32(math.Pow(2.0, exposureEV))
	ig := 1.0 / gamma

	for i := range buf {
		r := acesApprox(buf[i].R * exposure)
		g := acesApprox(buf[i].G * exposure)
		b := acesApprox(buf[i].B * exposure)

		if gamma != 1.0 {
			r = powf(r, ig)
			g = powf(g, ig)
			b = powf(b, ig)
		}

		buf[i].R = clamp01(r)
		buf[i].G = clamp01(g)
		buf[i].B = clamp01(b)
	}
}

// DefaultToneMap is FilmicToneMap at 0 EV and gamma 2.2.
func DefaultToneMap(buf []Color) {
	FilmicToneMap(buf, &Uniforms{Params: map[string]float64{"ExposureEV": 0, "OutputGamma": 2.2}})
}

// LinearExposure scales by 2^ExposureEV without any curve, then clamps to
// 0..1. Used ahead of the limiter on the LED path.
func LinearExposure(buf []Color, u *Uniforms) {
	s := float32(math.Pow(2, u.Param("ExposureEV", 0)))
	for i := range buf {
		buf[i].R = clamp01(buf[i].R * s)
		buf[i].G = clamp01(buf[i].G * s)
		buf[i].B = clamp01(buf[i].B * s)
	}
}

// DefaultLimiter applies a two-stage limiter:
// 1) Per-LED "white cap": scales (R,G,B) so R+G+B <= WhiteCap (default 3.0 = no cap)
// 2) Global current budget: estimates current and scales the whole frame to stay under Budget_mA
//
// Parameters (read from uniforms.Params):
//   - "WhiteCap" (sum of channels cap in linear space, default 3.0)
//   - "LEDChan_mA" (mA per color channel at full scale; WS2812 ≈ 20, default 20)
//   - "Budget_mA" (global budget in mA; if 0 or missing, only the white cap runs)
//   - "LimiterKnee" (fraction of budget where soft limiting begins; default 0.9)
//
// "PreviewMode" > 0.5 bypasses the limiter entirely.
func DefaultLimiter(buf []Color, u *Uniforms) {
	if u == nil || u.Param("PreviewMode", 0) > 0.5 {
		return
	}

	whiteCap := 3.0
	chanmA := 20.0
	budget := 0.0
	knee := 0.9
	if v := u.Param("WhiteCap", 0); v > 0 {
		whiteCap = v
	}
	if v := u.Param("LEDChan_mA", 0); v > 0 {
		chanmA = v
	}
	if v := u.Param("Budget_mA", 0); v > 0 {
		budget = v
	}
	if v := u.Param("LimiterKnee", 0); v > 0 && v < 1 {
		knee = v
	}

	// 1) Per-LED white cap
	wc := float32(whiteCap)
	for i := range buf {
		s := buf[i].R + buf[i].G + buf[i].B
		if s > wc && s > 0 {
			buf[i] = buf[i].Scale(wc / s)
		}
	}

	// 2) Global budget
	if budget <= 0 {
		return
	}
	total := EstimateCurrent(buf, float32(chanmA))
	if total <= 0 {
		return
	}
	// Soft knee: start scaling gently after knee*budget, fully meet budget above budget
	ratio := total / budget
	if ratio <= 1.0 {
		if ratio <= knee {
			return
		}
		minS := budget / total
		t := (ratio - knee) / (1.0 - knee)
		scaleFrame(buf, float32(1.0-t*(1.0-minS)))
		return
	}
	scaleFrame(buf, float32(budget/total))
}

// EstimateCurrent sums channel values times mA per full-scale channel.
func EstimateCurrent(buf []Color, chanmA float32) float64 {
	var total float64
	for i := range buf {
		total += float64((buf[i].R + buf[i].G + buf[i].B) * chanmA)
	}
	return total
}

func scaleFrame(buf []Color, s float32) {
	if s == 1.0 {
		return
	}
	for i := range buf {
		buf[i] = buf[i].Scale(s)
	}
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func powf(x float32, p float64) float32 {
	return float32(math.Pow(float64(x), p))
}

// Approximate ACES filmic curve (Narkowicz 2015).
func acesApprox(x float32) float32 {
	a := float32(2.51)
	b := float32(0.03)
	c := float32(2.43)
	d := float32(0.59)
	e := float32(0.14)
	return clamp01((x * (a*x + b)) / (x*(c*x+d) + e))
}
