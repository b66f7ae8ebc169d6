package sequence

import "sort"

// clamp01 clamps x in [0,1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// smootherstep: 6x^5 - 15x^4 + 10x^3
func smootherstep(x float64) float64 {
	return x * x * x * (x*(x*6-15) + 10)
}

func easeApply(kind string, x float64) float64 {
	switch kind {
	case "smooth":
		return x * x * (3 - 2*x)
	case "cubic":
		return smootherstep(x)
	default: // "linear", ""
		return x
	}
}

// Eval returns the value of the envelope at time t (seconds).
// No keys gives 0; values hold flat before the first and after the last key.
func (e Envelope) Eval(t float64) float64 {
	n := len(e.Keys)
	switch {
	case n == 0:
		return 0
	case n == 1 || t <= e.Keys[0].T:
		return e.Keys[0].V
	case t >= e.Keys[n-1].T:
		return e.Keys[n-1].V
	}
	// first key strictly after t; t sits in [i-1, i]
	i := sort.Search(n, func(i int) bool { return e.Keys[i].T > t })
	a, b := e.Keys[i-1], e.Keys[i]
	den := b.T - a.T
	if den <= 0 {
		return b.V
	}
	u := easeApply(a.Ease, clamp01((t-a.T)/den))
	return a.V + (b.V-a.V)*u
}

// BoolEval thresholds the envelope at 0.5 into a boolean.
func (e Envelope) BoolEval(t float64) bool {
	return e.Eval(t) >= 0.5
}
