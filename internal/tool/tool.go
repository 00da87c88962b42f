// Package tool describes the session-scoped drawing configuration: which
// tool is active, the selected color and the brush size.
package tool

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Kind is the active drawing tool.
type Kind int

const (
	Fill Kind = iota
	Brush
	Eraser
)

var kindNames = [...]string{"fill", "brush", "eraser"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Draws reports whether the tool paints along the pointer path.
func (k Kind) Draws() bool { return k == Brush || k == Eraser }

// ErrUnknownTool is returned by ParseKind for names it does not know.
var ErrUnknownTool = errors.New("unknown tool")

// ParseKind maps "fill", "brush" or "eraser" (any case) to a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return Fill, fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// DefaultBrushSize is the "medium" brush of the palette.
const DefaultBrushSize = 15

// DefaultColor is the first palette swatch.
var DefaultColor = color.NRGBA{R: 0xFF, G: 0x6B, B: 0x6B, A: 0xFF}

// State is read by drawing operations and never persisted.
type State struct {
	Tool      Kind
	Color     color.NRGBA
	BrushSize int
}

// Default returns the state a fresh session starts with.
func Default() State {
	return State{Tool: Fill, Color: DefaultColor, BrushSize: DefaultBrushSize}
}

// ErrBadColor is returned by ParseHex for malformed input.
var ErrBadColor = errors.New("bad color")

// ParseHex parses "#RRGGBB", "#RRGGBBAA" or the short "#RGB" form. The
// leading '#' is optional. Colors without an alpha component are opaque.
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 && len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	if len(h) == 6 {
		v = v<<8 | 0xFF
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats c as "#RRGGBB", or "#RRGGBBAA" when it is not opaque.
func Hex(c color.NRGBA) string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
