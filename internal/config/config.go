package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type PowerCfg struct {
	LimitAmps float64 `yaml:"limit_amps"`
	WhiteCap  float64 `yaml:"white_cap"`
	ChanMA    float64 `yaml:"chan_ma,omitempty"`
}

type Dim struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // "" picks the first port periph finds
	SpeedHz int    `yaml:"speed_hz"` // nrzled bit clock, e.g. 2500000
}

// LED describes the physical panel the led driver writes to.
type LED struct {
	Dim           Dim      `yaml:"dim"`
	XFlipEveryRow bool     `yaml:"x_flip_every_row"`
	ColorOrder    string   `yaml:"color_order"`
	SPI           SPI      `yaml:"spi,omitempty"`
	Power         PowerCfg `yaml:"power"`
}

type Snapshot struct {
	Dir   string `yaml:"dir"`
	Every int    `yaml:"every"`
}

type Config struct {
	Driver     string  `yaml:"driver"` // "term" | "ws" | "led" | "snapshot" | "fake"
	FPS        int     `yaml:"fps"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Preset     string  `yaml:"preset"`
	Seed       int64   `yaml:"seed,omitempty"` // 0 seeds from the clock
	Addr       string  `yaml:"addr"`
	NumBoxes   int     `yaml:"num_boxes"`
	Brightness float64 `yaml:"brightness"`

	// Program is a playlist file; empty plays Preset forever.
	Program string             `yaml:"program,omitempty"`
	Params  map[string]float64 `yaml:"params,omitempty"`

	LED      LED      `yaml:"led"`
	Snapshot Snapshot `yaml:"snapshot,omitempty"`
}

// Default is what runs when there is no config file.
func Default() *Config {
	return &Config{
		Driver:     "term",
		FPS:        60,
		Width:      160,
		Height:     90,
		Preset:     "neon",
		Addr:       ":8080",
		NumBoxes:   66,
		Brightness: 1,
		LED: LED{
			Dim:           Dim{X: 26, Y: 20},
			XFlipEveryRow: true,
			ColorOrder:    "GRB",
			SPI:           SPI{SpeedHz: 2500000},
			Power:         PowerCfg{LimitAmps: 3, WhiteCap: 0.85, ChanMA: 20},
		},
		Snapshot: Snapshot{Dir: "frames", Every: 30},
	}
}

// Validate reports the first problem found, wrapped in ErrInvalid.
func (c *Config) Validate() error {
	switch {
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps %d must be positive", ErrInvalid, c.FPS)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalid, c.Width, c.Height)
	case c.NumBoxes < 0:
		return fmt.Errorf("%w: num_boxes %d is negative", ErrInvalid, c.NumBoxes)
	case c.Brightness < 0:
		return fmt.Errorf("%w: brightness %.2f is negative", ErrInvalid, c.Brightness)
	}
	switch c.Driver {
	case "term", "ws", "led", "snapshot", "fake":
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalid, c.Driver)
	}
	if c.Driver == "led" && (c.LED.Dim.X <= 0 || c.LED.Dim.Y <= 0) {
		return fmt.Errorf("%w: led dim %dx%d must be positive", ErrInvalid, c.LED.Dim.X, c.LED.Dim.Y)
	}
	if c.Driver == "snapshot" && c.Snapshot.Dir == "" {
		return fmt.Errorf("%w: snapshot dir is empty", ErrInvalid)
	}
	return nil
}

// Load reads path over the defaults, so a partial file only overrides what
// it names.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
