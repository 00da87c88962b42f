// Package fill implements the barrier-respecting scanline flood fill used by
// the fill tool.
package fill

import (
	"image"
	"image/color"

	"colorbook/internal/segment"
)

// DefaultTolerance is the per-channel window within which two colors are
// treated as the same region. Channels match when |a-b| < tolerance.
const DefaultTolerance = 16

// seed is a point pushed onto the work stack; one per eligible span.
type seed struct{ x, y int }

// Fill recolors the 4-connected region around (x, y) whose pixels are not
// barriers and are within tol of the seed's original color. It returns the
// number of pixels written; zero means the call was a no-op (seed outside
// dst, on a barrier, or already within tol of c).
//
// dst must have its origin at (0, 0) and match the mask's dimensions.
func Fill(dst *image.NRGBA, mask *segment.Mask, x, y int, c color.NRGBA, tol int) int {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	if x < 0 || y < 0 || x >= w || y >= h {
		return 0
	}
	if mask.Width != w || mask.Height != h || mask.At(x, y) {
		return 0
	}
	if tol <= 0 {
		tol = DefaultTolerance
	}

	start := dst.NRGBAAt(x, y)
	if within(start, c, tol) {
		return 0
	}

	pix, stride := dst.Pix, dst.Stride
	eligible := func(px, py int) bool {
		if mask.Bits[py*w+px] {
			return false
		}
		o := py*stride + px*4
		return near(pix[o], start.R, tol) && near(pix[o+1], start.G, tol) &&
			near(pix[o+2], start.B, tol) && near(pix[o+3], start.A, tol)
	}

	filled := 0
	stack := []seed{{x, y}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sx, sy := s.x, s.y
		if !eligible(sx, sy) {
			// already painted through another span
			continue
		}
		for sx >= 0 && eligible(sx, sy) {
			sx--
		}
		sx++

		spanUp, spanDown := false, false
		for sx < w && eligible(sx, sy) {
			o := sy*stride + sx*4
			pix[o], pix[o+1], pix[o+2], pix[o+3] = c.R, c.G, c.B, c.A
			filled++

			if sy > 0 {
				up := eligible(sx, sy-1)
				if !spanUp && up {
					stack = append(stack, seed{sx, sy - 1})
					spanUp = true
				} else if spanUp && !up {
					spanUp = false
				}
			}
			if sy < h-1 {
				down := eligible(sx, sy+1)
				if !spanDown && down {
					stack = append(stack, seed{sx, sy + 1})
					spanDown = true
				} else if spanDown && !down {
					spanDown = false
				}
			}
			sx++
		}
	}
	return filled
}

// Within reports whether a and b match on every channel under tol.
func Within(a, b color.NRGBA, tol int) bool {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	return within(a, b, tol)
}

func within(a, b color.NRGBA, tol int) bool {
	return near(a.R, b.R, tol) && near(a.G, b.G, tol) && near(a.B, b.B, tol) && near(a.A, b.A, tol)
}

func near(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d < tol
}
