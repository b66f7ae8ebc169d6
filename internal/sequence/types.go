// Package sequence plays a playlist of clips: each clip picks a renderer
// and preset for a while, optionally crossfades into the next and
// automates parameters with keyframed envelopes.
package sequence

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Keyframe represents a value at time T (seconds) with an easing function
// that applies to the segment starting at this keyframe.
type Keyframe struct {
	T    float64 `yaml:"t"`
	V    float64 `yaml:"v"`
	Ease string  `yaml:"ease,omitempty"` // "linear","smooth","cubic"
}

// Envelope is a sorted list of keyframes; Eval(t) interpolates a value.
//
// In YAML an envelope is either a list of keyframes or a bare number,
// which means a constant.
type Envelope struct {
	Keys []Keyframe
}

// Constant is an envelope that always evaluates to v.
func Constant(v float64) Envelope { return Envelope{Keys: []Keyframe{{V: v}}} }

func (e *Envelope) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var v float64
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("envelope: %w", err)
		}
		*e = Constant(v)
		return nil
	}
	var keys []Keyframe
	if err := n.Decode(&keys); err != nil {
		return fmt.Errorf("envelope: %w", err)
	}
	sort.SliceStable(keys, func(i, j int) bool { return keys[i].T < keys[j].T })
	e.Keys = keys
	return nil
}

func (e Envelope) MarshalYAML() (interface{}, error) {
	if len(e.Keys) == 1 && e.Keys[0].T == 0 && e.Keys[0].Ease == "" {
		return e.Keys[0].V, nil
	}
	return e.Keys, nil
}

// Clip is one segment of a show: selects a renderer + preset, sets duration,
// optional crossfade into the NEXT clip, and controls parameter automation.
type Clip struct {
	Name      string              `yaml:"name"`
	Renderer  string              `yaml:"renderer"`
	Preset    string              `yaml:"preset,omitempty"`
	DurationS float64             `yaml:"durationS"`
	XFadeS    float64             `yaml:"xFadeS,omitempty"`
	Params    map[string]Envelope `yaml:"params,omitempty"` // numeric params over clip-local time
	Bools     map[string]Envelope `yaml:"bools,omitempty"`  // 0..1 thresholded to bool
}

// Program is a full sequence of clips.
type Program struct {
	Version string `yaml:"version"` // e.g., "seq.v1"
	Loop    bool   `yaml:"loop,omitempty"`
	Clips   []Clip `yaml:"clips"`
}

// ErrEmptyProgram is returned for a program without clips.
var ErrEmptyProgram = errors.New("program has no clips")

// Validate checks durations and crossfade windows.
func (p Program) Validate() error {
	if len(p.Clips) == 0 {
		return ErrEmptyProgram
	}
	for i, c := range p.Clips {
		switch {
		case c.Renderer == "":
			return fmt.Errorf("clip %d (%s): no renderer", i, c.Name)
		case c.DurationS <= 0:
			return fmt.Errorf("clip %d (%s): duration must be positive", i, c.Name)
		case c.XFadeS < 0 || c.XFadeS > c.DurationS:
			return fmt.Errorf("clip %d (%s): crossfade %.2fs outside 0..%.2fs", i, c.Name, c.XFadeS, c.DurationS)
		}
	}
	return nil
}

// Duration is the summed length of all clips.
func (p Program) Duration() float64 {
	total := 0.0
	for _, c := range p.Clips {
		total += c.DurationS
	}
	return total
}

// ParseProgram decodes and validates a YAML program.
func ParseProgram(data []byte) (Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Program{}, fmt.Errorf("parse program: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	return p, nil
}

// LoadProgram reads a YAML program from path.
func LoadProgram(path string) (Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Program{}, err
	}
	return ParseProgram(b)
}

// PlayerState enumerates sequencer states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are dependency-injected callbacks into the render engine.
type Hooks struct {
	// Set active renderer/preset immediately.
	SetRenderer func(name, preset string)
	// Parameter and boolean setters for the ACTIVE renderer.
	SetParam func(name string, v float64)
	SetBool  func(name string, b bool)
	// Prepare the next renderer/preset for crossfade.
	ArmNext      func(name, preset string)
	SetCrossfade func(alpha float64) // 0..1 mix between active and armed
	// OnClip is told whenever a clip becomes current.
	OnClip func(index int, c Clip)
}

// Player owns the current Program timeline and uses Hooks to drive the engine.
// It is not safe for concurrent use; the animation loop owns it.
type Player struct {
	State PlayerState

	prog Program
	nowS float64 // position within program
	idx  int     // current clip index
	base float64 // program time at which clip idx started

	// crossfade bookkeeping
	armedIndex int // which clip is armed next (-1 means none)
	lastAlpha  float64

	hooks Hooks
}
