// Package segment turns line art into the two derived rasters the coloring
// engine works with: a barrier mask that flood fill may not cross, and a
// transparent outline layer drawn over the color layer every frame.
package segment

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
)

// DefaultInkThreshold is the per-channel bound below which a pixel counts as ink.
const DefaultInkThreshold = 70

// Options control classification. The zero value uses the defaults.
type Options struct {
	// InkThreshold is compared against R, G and B; all three must be
	// strictly below it for a pixel to be ink.
	InkThreshold uint8
	// Logger receives backend diagnostics. Nil is silent.
	Logger *slog.Logger
}

func (o Options) threshold() uint8 {
	if o.InkThreshold == 0 {
		return DefaultInkThreshold
	}
	return o.InkThreshold
}

// Mask is a width×height grid of barrier flags, row major.
type Mask struct {
	Width, Height int
	Bits          []bool
}

// NewMask returns an all-passable mask.
func NewMask(w, h int) *Mask {
	return &Mask{Width: w, Height: h, Bits: make([]bool, w*h)}
}

// At reports whether (x, y) is a barrier. Pixels outside the mask are
// impassable.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return true
	}
	return m.Bits[y*m.Width+x]
}

// Set marks (x, y) as barrier or passable.
func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// Count returns the number of barrier pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Equal reports whether both masks have the same size and bits.
func (m *Mask) Equal(o *Mask) bool {
	if m.Width != o.Width || m.Height != o.Height {
		return false
	}
	for i := range m.Bits {
		if m.Bits[i] != o.Bits[i] {
			return false
		}
	}
	return true
}

// Result is the output of Classify. Mask and Outline always describe the
// same pixels.
type Result struct {
	Mask    *Mask
	Outline *image.NRGBA
}

var (
	inkColor   = color.NRGBA{A: 255}
	clearColor = color.NRGBA{}
)

// Classify derives the barrier mask and outline layer from src.
//
// A pixel is ink when its non-premultiplied R, G and B are all below the
// threshold; alpha is not consulted. The ink set is grown by one pixel in
// all eight directions, and the outline layer is opaque black exactly where
// the grown mask is set.
func Classify(src image.Image, opts Options) Result {
	img := ToNRGBA(src)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	t := opts.threshold()

	raw := NewMask(w, h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			r, g, b := row[x*4], row[x*4+1], row[x*4+2]
			if r < t && g < t && b < t {
				raw.Bits[y*w+x] = true
			}
		}
	}

	mask := dilate(raw, opts.Logger)
	return Result{Mask: mask, Outline: OutlineFor(mask)}
}

// OutlineFor renders mask as an outline layer.
func OutlineFor(mask *Mask) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, mask.Width, mask.Height))
	for i, b := range mask.Bits {
		c := clearColor
		if b {
			c = inkColor
		}
		o := i * 4
		out.Pix[o], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = c.R, c.G, c.B, c.A
	}
	return out
}

// ToNRGBA returns src as an *image.NRGBA with its origin at (0, 0). An
// NRGBA that already satisfies that is returned as is.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return dst
}
