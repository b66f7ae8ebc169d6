package render

import "testing"

func TestDefaultLimiterBudgetClamp(t *testing.T) {
	// 10 pixels all white
	n := 10
	buf := make([]Color, n)
	for i := range buf {
		buf[i] = Color{1, 1, 1}
	}
	u := &Uniforms{Params: map[string]float64{
		"LEDChan_mA":  20,  // 60mA at white per LED
		"Budget_mA":   300, // allow 300 mA total
		"WhiteCap":    3.0,
		"LimiterKnee": 0.9,
	}}

	// pre-limit current would be 10 * 60 = 600 mA
	DefaultLimiter(buf, u)
	cur := EstimateCurrent(buf, 20)
	if cur > 300.1 {
		t.Fatalf("expected <= 300mA after limit, got %.2f mA", cur)
	}
}

func TestWhiteCap(t *testing.T) {
	buf := []Color{{1, 1, 1}} // sum=3
	u := &Uniforms{Params: map[string]float64{"WhiteCap": 1.5}}
	DefaultLimiter(buf, u)
	sum := buf[0].R + buf[0].G + buf[0].B
	if sum > 1.5001 {
		t.Fatalf("expected sum <= 1.5, got %f", sum)
	}
}

func TestPreviewModeBypassesLimiter(t *testing.T) {
	buf := []Color{{1, 1, 1}}
	u := &Uniforms{Params: map[string]float64{"WhiteCap": 1.5, "PreviewMode": 1}}
	DefaultLimiter(buf, u)
	if buf[0] != (Color{1, 1, 1}) {
		t.Fatalf("expected untouched pixel, got %+v", buf[0])
	}
}

func TestLinearExposureClamps(t *testing.T) {
	buf := []Color{{0.25, 0.6, -1}}
	LinearExposure(buf, &Uniforms{Params: map[string]float64{"ExposureEV": 1}})
	if buf[0].R != 0.5 || buf[0].G != 1 || buf[0].B != 0 {
		t.Fatalf("unexpected %+v", buf[0])
	}
}
