// Package ws mirrors frames to browsers over websockets and accepts a small
// set of control commands back.
package ws

import (
	"encoding/base64"
	"encoding/json"
	"image"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/image/draw"

	"github.com/coreman2200/funtimes-wormhole/internal/anim"
	diag "github.com/coreman2200/funtimes-wormhole/internal/diagnostics"
	"github.com/coreman2200/funtimes-wormhole/internal/render"
)

// Server is a render.Driver. Write is called on the loop goroutine;
// handlers run on the HTTP server's goroutines and only touch the client
// sets, the hub and the sink.
type Server struct {
	Hub  *diag.Hub
	Sink func(anim.Event) bool

	// MaxWidth caps the preview width; larger frames are scaled down.
	MaxWidth int
	// Throttle is the minimum time between broadcast frames.
	Throttle time.Duration

	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	frameID  uint64
	lastEmit time.Time
	img      *image.RGBA
	small    *image.RGBA
	rgb      []byte

	up  websocket.Upgrader
	log zerolog.Logger
}

func New(hub *diag.Hub, sink func(anim.Event) bool) *Server {
	if hub == nil {
		hub = diag.NewHub()
	}
	if sink == nil {
		sink = func(anim.Event) bool { return true }
	}
	return &Server{
		Hub:      hub,
		Sink:     sink,
		MaxWidth: 320,
		Throttle: 50 * time.Millisecond, // ~20 FPS to browsers
		clients:  map[*websocket.Conn]bool{},
		up:       websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:      log.With().Str("driver", "ws").Logger(),
	}
}

// Handler routes /ws, /control, /diag and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return withCORS(mux)
}

type frameMsg struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	W       int    `json:"w"`
	H       int    `json:"h"`
	RGB     string `json:"rgb"` // base64, 3 bytes per pixel
}

func (s *Server) Write(f *render.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameID++
	if len(s.clients) == 0 {
		return nil
	}
	now := time.Now()
	if s.lastEmit.Add(s.Throttle).After(now) {
		return nil
	}
	s.lastEmit = now

	s.img = f.Image(s.img)
	src := s.img
	if s.MaxWidth > 0 && f.W > s.MaxWidth {
		h := max(1, f.H*s.MaxWidth/f.W)
		if s.small == nil || s.small.Rect.Dx() != s.MaxWidth || s.small.Rect.Dy() != h {
			s.small = image.NewRGBA(image.Rect(0, 0, s.MaxWidth, h))
		}
		draw.ApproxBiLinear.Scale(s.small, s.small.Rect, s.img, s.img.Rect, draw.Src, nil)
		src = s.small
	}
	s.rgb = packRGB(s.rgb, src)

	b, err := json.Marshal(frameMsg{
		T:       now.UnixNano(),
		FrameID: s.frameID,
		W:       src.Rect.Dx(),
		H:       src.Rect.Dy(),
		RGB:     base64.StdEncoding.EncodeToString(s.rgb),
	})
	if err != nil {
		return err
	}
	for c := range s.clients {
		_ = c.SetWriteDeadline(now.Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			s.log.Debug().Err(err).Msg("write frame")
		}
	}
	return nil
}

func packRGB(dst []byte, img *image.RGBA) []byte {
	dst = dst[:0]
	for y := 0; y < img.Rect.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < img.Rect.Dx(); x++ {
			dst = append(dst, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return dst
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("frame client connected")

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Clients is the number of connected frame clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ch, cancel := s.Hub.Subscribe()
	go func() {
		// reader notices the close and ends the subscription
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	go func() {
		defer conn.Close()
		for _, d := range s.Hub.Recent() {
			if err := writeJSON(conn, d); err != nil {
				return
			}
		}
		for d := range ch {
			if err := writeJSON(conn, d); err != nil {
				return
			}
		}
	}()
}

func writeJSON(c *websocket.Conn, v any) error {
	_ = c.SetWriteDeadline(time.Now().Add(time.Second))
	return c.WriteJSON(v)
}

type health struct {
	diag.Stats
	Clients  int     `json:"clients"`
	RSSBytes uint64  `json:"rss_bytes"`
	CPUPct   float64 `json:"cpu_pct"`
	Threads  int32   `json:"threads"`
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := health{Stats: s.Hub.Stats(), Clients: s.Clients()}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			resp.RSSBytes = mi.RSS
		}
		if pct, err := p.CPUPercent(); err == nil {
			resp.CPUPct = pct
		}
		if n, err := p.NumThreads(); err == nil {
			resp.Threads = n
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
