package anim

import (
	"sync"
	"time"
)

// FrameSource delivers frame timestamps. It is a push source: when the
// consumer is slow, ticks are dropped or delayed by the source, never queued
// without bound.
type FrameSource interface {
	Frames() <-chan time.Time
	Stop()
}

// Ticker is a FrameSource backed by time.Ticker.
type Ticker struct {
	t *time.Ticker
}

// NewTicker ticks at fps frames per second (60 when fps <= 0).
func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		fps = 60
	}
	return &Ticker{t: time.NewTicker(time.Second / time.Duration(fps))}
}

func (t *Ticker) Frames() <-chan time.Time { return t.t.C }
func (t *Ticker) Stop()                    { t.t.Stop() }

// Fixed emits N timestamps spaced DT apart starting at Start, as fast as
// the consumer takes them, then closes. Used for headless runs and tests.
type Fixed struct {
	ch   chan time.Time
	stop chan struct{}
	once sync.Once
}

func NewFixed(start time.Time, n int, dt time.Duration) *Fixed {
	f := &Fixed{ch: make(chan time.Time), stop: make(chan struct{})}
	go func() {
		defer close(f.ch)
		for i := 0; i < n; i++ {
			select {
			case f.ch <- start.Add(time.Duration(i) * dt):
			case <-f.stop:
				return
			}
		}
	}()
	return f
}

func (f *Fixed) Frames() <-chan time.Time { return f.ch }
func (f *Fixed) Stop()                    { f.once.Do(func() { close(f.stop) }) }
