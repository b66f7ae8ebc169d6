// Package post assembles the post-processing pipelines the drivers need.
package post

import "github.com/coreman2200/funtimes-wormhole/internal/render"

// Preview does Bloom -> Exposure -> Tonemap(ACES) -> Gamma, no limiter.
// Used for screens: terminal, websocket preview, snapshots.
func Preview(b *render.Bloom) render.PostPipeline {
	if b == nil {
		b = render.NewBloom()
	}
	return render.PostPipeline{
		Bloom:   b.Apply,
		ToneMap: render.FilmicToneMap,
	}
}

// LED does Bloom -> Exposure (linear) -> Limiter, no tonemap, no gamma, so
// the panel gets linear 0..1 values it can gamma-correct itself.
func LED(b *render.Bloom) render.PostPipeline {
	if b == nil {
		b = render.NewBloom()
	}
	return render.PostPipeline{
		Bloom:   b.Apply,
		ToneMap: render.LinearExposure,
		Limiter: render.DefaultLimiter,
	}
}

// ForDriver picks the pipeline for a driver kind.
func ForDriver(kind string) render.PostPipeline {
	if kind == "led" {
		return LED(nil)
	}
	return Preview(nil)
}
