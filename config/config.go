// Package config loads tracepad settings from a TOML file.
//
//	[surface]
//	width = 800
//	height = 600
//	scale = 1.0
//
//	[brush]
//	color = "#000000"
//	size = 3
//	eraser = false
//
//	[filter]
//	sensitivity = 5.0
//	contrast = 3.0
//	threshold = 15.0
//	border = "white"   # or "replicate"
//	workers = 0        # 0 uses every CPU
//
//	[overlay]
//	opacity = 0.2
//	mirrored = false
//
//	[log]
//	level = "info"     # debug, info, warn or error
//
// Missing keys keep their defaults. Unknown keys are an error.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wbrown/tracepad/edge"
	"github.com/wbrown/tracepad/imageutil"
	"github.com/wbrown/tracepad/surface"
)

// ErrInvalid is wrapped by every validation and decoding error.
var ErrInvalid = errors.New("config: invalid")

// Config is the whole configuration file.
type Config struct {
	Surface Surface `toml:"surface"`
	Brush   Brush   `toml:"brush"`
	Filter  Filter  `toml:"filter"`
	Overlay Overlay `toml:"overlay"`
	Log     Log     `toml:"log"`
}

// Surface sizes the drawing surface in logical pixels.
type Surface struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Scale  float64 `toml:"scale"`
}

// Brush is the starting brush.
type Brush struct {
	Color  string `toml:"color"`
	Size   int    `toml:"size"`
	Eraser bool   `toml:"eraser"`
}

// Filter holds the line-art settings.
type Filter struct {
	Sensitivity float64 `toml:"sensitivity"`
	Contrast    float64 `toml:"contrast"`
	Threshold   float64 `toml:"threshold"`
	Border      string  `toml:"border"`
	Workers     int     `toml:"workers"`
}

// Overlay controls the ghosted reference on comparison sheets. It never
// touches the drawing itself.
type Overlay struct {
	Opacity  float64 `toml:"opacity"`
	Mirrored bool    `toml:"mirrored"` // show the drawing panel as on a flipped pad
}

// Log sets the log level.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	fs := edge.DefaultSettings()
	b := surface.DefaultBrush()
	return Config{
		Surface: Surface{Width: 800, Height: 600, Scale: 1},
		Brush:   Brush{Color: b.Color.Hex(), Size: b.Size},
		Filter: Filter{
			Sensitivity: fs.Sensitivity,
			Contrast:    fs.Contrast,
			Threshold:   fs.Threshold,
			Border:      edge.BorderWhite.String(),
		},
		Overlay: Overlay{Opacity: 0.2},
		Log:     Log{Level: "info"},
	}
}

// Load reads and validates the file at path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := finish(md, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates TOML text on top of Default.
func Parse(text string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := finish(md, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func finish(md toml.MetaData, cfg *Config) error {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, _, err := surface.PhysicalSize(c.Surface.Width, c.Surface.Height, c.Surface.Scale); err != nil {
		return fmt.Errorf("%w: [surface] %w", ErrInvalid, err)
	}
	if _, err := c.BrushSettings(); err != nil {
		return fmt.Errorf("%w: [brush] %w", ErrInvalid, err)
	}
	if err := c.FilterSettings().Validate(); err != nil {
		return fmt.Errorf("%w: [filter] %w", ErrInvalid, err)
	}
	if _, err := edge.ParseBorder(c.Filter.Border); err != nil {
		return fmt.Errorf("%w: [filter] %w", ErrInvalid, err)
	}
	if c.Filter.Workers < 0 {
		return fmt.Errorf("%w: [filter] workers %d must not be negative", ErrInvalid, c.Filter.Workers)
	}
	if math.IsNaN(c.Overlay.Opacity) || c.Overlay.Opacity < 0 || c.Overlay.Opacity > 1 {
		return fmt.Errorf("%w: [overlay] opacity %v must be in [0, 1]", ErrInvalid, c.Overlay.Opacity)
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("%w: [log] %w", ErrInvalid, err)
	}
	return nil
}

// BrushSettings converts the [brush] section.
func (c Config) BrushSettings() (surface.Brush, error) {
	rgb, err := imageutil.ParseHexRGB(c.Brush.Color)
	if err != nil {
		return surface.Brush{}, err
	}
	b := surface.Brush{Color: rgb, Size: c.Brush.Size, Eraser: c.Brush.Eraser}
	if err := b.Validate(); err != nil {
		return surface.Brush{}, err
	}
	return b, nil
}

// FilterSettings converts the [filter] section.
func (c Config) FilterSettings() edge.Settings {
	return edge.Settings{
		Sensitivity: c.Filter.Sensitivity,
		Contrast:    c.Filter.Contrast,
		Threshold:   c.Filter.Threshold,
	}
}

// EdgeOptions returns the border and worker options of the [filter] section.
// An unknown border falls back to white; Validate reports it.
func (c Config) EdgeOptions() []edge.Option {
	border, err := edge.ParseBorder(c.Filter.Border)
	if err != nil {
		border = edge.BorderWhite
	}
	return []edge.Option{edge.WithBorder(border), edge.WithWorkers(c.Filter.Workers)}
}

// LogLevel parses the [log] level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return level, nil
}
