// Package anim drives the animation: one goroutine that takes frame ticks
// from a FrameSource, applies queued host events between ticks and runs the
// per-frame step.
package anim

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrStarted is returned by Run on a loop that already ran.
var ErrStarted = errors.New("anim: loop already started")

type State int32

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// StepFunc renders one frame. elapsed is measured from Run's start.
type StepFunc func(elapsed time.Duration) error

// Handler applies a host event. It runs on the loop goroutine.
type Handler func(Event)

// Loop is the single logical actor: all scene mutation and rendering happen
// inside Run, on one goroutine.
type Loop struct {
	src    FrameSource
	step   StepFunc
	handle Handler
	events chan Event
	state  atomic.Int32

	// Clock is read once when Run starts. Defaults to time.Now.
	Clock func() time.Time
	Log   zerolog.Logger

	ticks   atomic.Uint64
	errs    atomic.Uint64
	dropped atomic.Uint64
}

// New returns an idle loop. queue is the event buffer size.
func New(src FrameSource, step StepFunc, handle Handler, queue int) *Loop {
	if queue <= 0 {
		queue = 64
	}
	return &Loop{
		src:    src,
		step:   step,
		handle: handle,
		events: make(chan Event, queue),
		Clock:  time.Now,
		Log:    log.With().Str("component", "anim").Logger(),
	}
}

func (l *Loop) State() State { return State(l.state.Load()) }

// Ticks is the number of steps run so far.
func (l *Loop) Ticks() uint64 { return l.ticks.Load() }

// Dropped counts events Post had to discard.
func (l *Loop) Dropped() uint64 { return l.dropped.Load() }

// Post queues ev for the loop without blocking. It returns false and drops
// the event when the queue is full.
func (l *Loop) Post(ev Event) bool {
	select {
	case l.events <- ev:
		return true
	default:
		l.dropped.Add(1)
		return false
	}
}

// Run blocks until ctx is done, the source closes or a Quit event arrives.
// Step errors are logged and the loop keeps going.
func (l *Loop) Run(ctx context.Context) error {
	if !l.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return ErrStarted
	}
	defer l.state.Store(int32(Stopped))
	defer l.src.Stop()

	start := l.Clock()
	frames := l.src.Frames()
	l.Log.Debug().Time("start", start).Msg("loop running")

	for {
		select {
		case <-ctx.Done():
			l.Log.Debug().Uint64("ticks", l.Ticks()).Msg("loop cancelled")
			return nil
		case ev := <-l.events:
			if l.apply(ev) {
				return nil
			}
		case ts, ok := <-frames:
			if !ok {
				return nil
			}
			if l.drain() {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			if err := l.step(ts.Sub(start)); err != nil {
				if l.errs.Add(1)%100 == 1 {
					l.Log.Warn().Err(err).Uint64("errors", l.errs.Load()).Msg("step failed")
				}
			}
			l.ticks.Add(1)
		}
	}
}

// drain applies everything already queued so a tick sees it.
func (l *Loop) drain() (quit bool) {
	for {
		select {
		case ev := <-l.events:
			if l.apply(ev) {
				return true
			}
		default:
			return false
		}
	}
}

func (l *Loop) apply(ev Event) (quit bool) {
	if _, ok := ev.(Quit); ok {
		return true
	}
	if l.handle != nil {
		l.handle(ev)
	}
	return false
}
