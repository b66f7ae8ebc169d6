package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreman2200/funtimes-wormhole/internal/anim"
	"github.com/coreman2200/funtimes-wormhole/internal/render"
)

// Command is one /control message. Every field is optional; a message may
// carry several.
type Command struct {
	Preset string `json:"preset,omitempty"`
	Param  *struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	} `json:"param,omitempty"`
	Orbit *struct {
		DX   float32 `json:"dx"`
		DY   float32 `json:"dy"`
		Zoom float32 `json:"zoom"`
	} `json:"orbit,omitempty"`
	Resize *struct {
		W int `json:"w"`
		H int `json:"h"`
	} `json:"resize,omitempty"`
}

type reply struct {
	OK     bool   `json:"ok"`
	Queued int    `json:"queued"`
	Error  string `json:"error,omitempty"`
}

var (
	errEmptyCommand = errors.New("command names nothing to do")
	errBusy         = errors.New("event queue full")
	errBadResize    = fmt.Errorf("resize needs w and h in 1..%d", render.MaxDim)
	errBadParam     = errors.New("param needs a name")
)

// Events turns a command into loop events.
func (c Command) Events() ([]anim.Event, error) {
	var out []anim.Event
	if c.Resize != nil {
		if !render.ValidSize(c.Resize.W, c.Resize.H) {
			return nil, errBadResize
		}
		out = append(out, anim.Resize{W: c.Resize.W, H: c.Resize.H})
	}
	if c.Preset != "" {
		out = append(out, anim.SetPreset{Name: c.Preset})
	}
	if c.Param != nil {
		if c.Param.Name == "" {
			return nil, errBadParam
		}
		out = append(out, anim.SetParam{Name: c.Param.Name, Value: c.Param.Value})
	}
	if c.Orbit != nil {
		if c.Orbit.DX != 0 || c.Orbit.DY != 0 {
			out = append(out, anim.Drag{DX: c.Orbit.DX, DY: c.Orbit.DY})
		}
		if c.Orbit.Zoom != 0 {
			out = append(out, anim.Zoom{Delta: c.Orbit.Zoom})
		}
	}
	if len(out) == 0 {
		return nil, errEmptyCommand
	}
	return out, nil
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			_ = writeJSON(conn, reply{Error: err.Error()})
			continue
		}
		if err := writeJSON(conn, s.apply(cmd)); err != nil {
			return
		}
	}
}

func (s *Server) apply(cmd Command) reply {
	evs, err := cmd.Events()
	if err != nil {
		return reply{Error: err.Error()}
	}
	n := 0
	for _, ev := range evs {
		if s.Sink(ev) {
			n++
		}
	}
	if n < len(evs) {
		return reply{Queued: n, Error: errBusy.Error()}
	}
	return reply{OK: true, Queued: n}
}
