// Package config loads the TOML settings shared by the desktop app, the
// bridge server and the command line tools.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"colorbook/internal/fill"
	"colorbook/internal/history"
	"colorbook/internal/net"
	"colorbook/internal/segment"
	"colorbook/internal/state"
	"colorbook/internal/tool"
	"colorbook/internal/viewport"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the whole settings file.
type Config struct {
	Engine  Engine  `toml:"engine"`
	Palette Palette `toml:"palette"`
	Brush   Brush   `toml:"brush"`
	Server  Server  `toml:"server"`
}

// Engine tunes the coloring session.
type Engine struct {
	InkThreshold    int     `toml:"ink_threshold"`
	FillTolerance   int     `toml:"fill_tolerance"`
	HistoryLimit    int     `toml:"history_limit"`
	MinScale        float64 `toml:"min_scale"`
	MaxScale        float64 `toml:"max_scale"`
	TapSlop         float64 `toml:"tap_slop"`
	MaxCanvasSide   int     `toml:"max_canvas_side"`
	MaxDecodePixels int64   `toml:"max_decode_pixels"`
	FrameRate       int     `toml:"frame_rate"`
}

// Palette lists the swatches offered by the desktop app.
type Palette struct {
	Colors []string `toml:"colors"`
}

// Brush holds the brush size presets.
type Brush struct {
	Small   int    `toml:"small"`
	Medium  int    `toml:"medium"`
	Large   int    `toml:"large"`
	Default string `toml:"default"`
}

// Server configures the bridge.
type Server struct {
	Listen         string        `toml:"listen"`
	MDNS           bool          `toml:"mdns"`
	Frames         bool          `toml:"frames"`
	FetchTimeout   time.Duration `toml:"fetch_timeout"`
	MaxSourceBytes int64         `toml:"max_source_bytes"`
}

// DefaultPalette is the swatch list of the original coloring app.
var DefaultPalette = []string{
	"#FF6B6B", "#FFD93D", "#6BCB77", "#4D96FF", "#845EC2",
	"#FF9671", "#FFC75F", "#F9F871", "#FF6F91", "#00C9A7",
	"#A52A2A", "#8D5524", "#000000", "#78716C", "#FFFFFF",
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Engine: Engine{
			InkThreshold:    segment.DefaultInkThreshold,
			FillTolerance:   fill.DefaultTolerance,
			HistoryLimit:    history.DefaultLimit,
			MinScale:        viewport.DefaultMinScale,
			MaxScale:        viewport.DefaultMaxScale,
			TapSlop:         viewport.DefaultTapSlop,
			MaxCanvasSide:   state.DefaultMaxCanvasSide,
			MaxDecodePixels: state.DefaultMaxDecodePixels,
			FrameRate:       60,
		},
		Palette: Palette{Colors: append([]string(nil), DefaultPalette...)},
		Brush:   Brush{Small: 5, Medium: tool.DefaultBrushSize, Large: 30, Default: "medium"},
		Server: Server{
			Listen:         ":8888",
			MDNS:           true,
			Frames:         true,
			FetchTimeout:   net.DefaultFetchTimeout,
			MaxSourceBytes: net.DefaultMaxSourceBytes,
		},
	}
}

// DefaultPath is $UserConfigDir/colorbook/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "colorbook", "config.toml"), nil
}

// Load reads path over the defaults. An empty path means DefaultPath; a
// missing file is not an error. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks every field and names the first bad one.
func (c Config) Validate() error {
	e := c.Engine
	switch {
	case e.InkThreshold < 1 || e.InkThreshold > 255:
		return invalid("engine.ink_threshold", e.InkThreshold)
	case e.FillTolerance < 1 || e.FillTolerance > 256:
		return invalid("engine.fill_tolerance", e.FillTolerance)
	case e.HistoryLimit < 1:
		return invalid("engine.history_limit", e.HistoryLimit)
	case e.MinScale <= 0:
		return invalid("engine.min_scale", e.MinScale)
	case e.MaxScale < e.MinScale:
		return invalid("engine.max_scale", e.MaxScale)
	case e.TapSlop < 0:
		return invalid("engine.tap_slop", e.TapSlop)
	case e.MaxCanvasSide < 1:
		return invalid("engine.max_canvas_side", e.MaxCanvasSide)
	case e.MaxDecodePixels < 1:
		return invalid("engine.max_decode_pixels", e.MaxDecodePixels)
	case e.FrameRate < 1 || e.FrameRate > 240:
		return invalid("engine.frame_rate", e.FrameRate)
	}

	if len(c.Palette.Colors) == 0 {
		return fmt.Errorf("%w: palette.colors is empty", ErrInvalid)
	}
	for i, hex := range c.Palette.Colors {
		if _, err := tool.ParseHex(hex); err != nil {
			return invalid(fmt.Sprintf("palette.colors[%d]", i), hex)
		}
	}

	b := c.Brush
	switch {
	case b.Small < 1:
		return invalid("brush.small", b.Small)
	case b.Medium < 1:
		return invalid("brush.medium", b.Medium)
	case b.Large < 1:
		return invalid("brush.large", b.Large)
	case b.Default != "small" && b.Default != "medium" && b.Default != "large":
		return invalid("brush.default", b.Default)
	}

	s := c.Server
	switch {
	case s.FetchTimeout <= 0:
		return invalid("server.fetch_timeout", s.FetchTimeout)
	case s.MaxSourceBytes < 1:
		return invalid("server.max_source_bytes", s.MaxSourceBytes)
	}
	return nil
}

func invalid(field string, v any) error {
	return fmt.Errorf("%w: %s: bad value %v", ErrInvalid, field, v)
}

// EngineOptions converts the engine section into session options.
func (c Config) EngineOptions() []state.Option {
	e := c.Engine
	return []state.Option{
		state.WithInkThreshold(uint8(e.InkThreshold)),
		state.WithTolerance(e.FillTolerance),
		state.WithHistoryLimit(e.HistoryLimit),
		state.WithScaleLimits(e.MinScale, e.MaxScale),
		state.WithTapSlop(e.TapSlop),
		state.WithMaxCanvasSide(e.MaxCanvasSide),
		state.WithMaxDecodePixels(e.MaxDecodePixels),
	}
}

// Colors returns the palette as colors. Entries that do not parse are
// skipped.
func (c Config) Colors() []color.NRGBA {
	out := make([]color.NRGBA, 0, len(c.Palette.Colors))
	for _, hex := range c.Palette.Colors {
		if col, err := tool.ParseHex(hex); err == nil {
			out = append(out, col)
		}
	}
	return out
}

// Sizes returns the small, medium and large brush presets.
func (b Brush) Sizes() [3]int { return [3]int{b.Small, b.Medium, b.Large} }

// DefaultSize returns the preset named by Default.
func (b Brush) DefaultSize() int {
	switch b.Default {
	case "small":
		return b.Small
	case "large":
		return b.Large
	}
	return b.Medium
}
