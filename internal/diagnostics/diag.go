package diagnostics

import (
	"sync"
	"time"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Stats is the per-frame snapshot the loop publishes.
type Stats struct {
	FrameID   uint64  `json:"frame_id"`
	FPS       float64 `json:"fps"`
	RenderMS  float64 `json:"render_ms"`
	PostMS    float64 `json:"post_ms"`
	TotalMS   float64 `json:"total_ms"`
	Renderer  string  `json:"renderer"`
	Crossfade float64 `json:"crossfade"`
	UptimeS   float64 `json:"uptime_s"`
}

const keepRecent = 32

// Hub is where the render loop reports and network handlers read. It is
// the only state the two sides share.
type Hub struct {
	mu     sync.RWMutex
	start  time.Time
	last   time.Time
	stats  Stats
	recent []Diagnostic
	subs   map[chan Diagnostic]struct{}

	// Clock defaults to time.Now.
	Clock func() time.Time
}

func NewHub() *Hub {
	h := &Hub{Clock: time.Now, subs: map[chan Diagnostic]struct{}{}}
	h.start = h.Clock()
	return h
}

// Frame records a rendered frame. FPS is smoothed over recent frames.
func (h *Hub) Frame(s Stats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.Clock()
	fps := h.stats.FPS
	if !h.last.IsZero() {
		if dt := now.Sub(h.last).Seconds(); dt > 0 {
			inst := 1 / dt
			if fps == 0 {
				fps = inst
			} else {
				fps += (inst - fps) * 0.1
			}
		}
	}
	h.last = now
	s.FPS = fps
	s.UptimeS = now.Sub(h.start).Seconds()
	h.stats = s
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stats
}

// Push records d and fans it out to subscribers. Slow subscribers miss
// diagnostics rather than stall the caller.
func (h *Hub) Push(d Diagnostic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recent = append(h.recent, d)
	if len(h.recent) > keepRecent {
		h.recent = h.recent[len(h.recent)-keepRecent:]
	}
	for ch := range h.subs {
		select {
		case ch <- d:
		default:
		}
	}
}

// Recent returns a copy of the last diagnostics, oldest first.
func (h *Hub) Recent() []Diagnostic {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Diagnostic(nil), h.recent...)
}

// Subscribe returns a channel of new diagnostics and a func that ends the
// subscription.
func (h *Hub) Subscribe() (<-chan Diagnostic, func()) {
	ch := make(chan Diagnostic, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}
