// Package stroke rasterizes freehand brush and eraser segments onto the
// color layer. Neither tool looks at the barrier mask; the outline layer is
// composited on top every frame, so painting under it is harmless.
package stroke

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"colorbook/internal/geom"
	"colorbook/internal/tool"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

var eraserWhite = image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 255})

// Segment paints one segment with the given tool and returns the rectangle
// it touched. Fill is not a stroke tool and paints nothing.
func Segment(dst *image.NRGBA, from, to geom.Point, k tool.Kind, c color.NRGBA, size int) image.Rectangle {
	switch k {
	case tool.Brush:
		return Brush(dst, from, to, c, float64(size))
	case tool.Eraser:
		return Erase(dst, from, to, size)
	}
	return image.Rectangle{}
}

// Brush paints a line of width size from one point to the other with round
// caps, anti-aliased and composited over dst. A zero-length segment paints
// a dot.
func Brush(dst *image.NRGBA, from, to geom.Point, c color.NRGBA, size float64) image.Rectangle {
	if size <= 0 || isBad(from) || isBad(to) {
		return image.Rectangle{}
	}
	r := size / 2
	bounds := image.Rect(
		int(math.Floor(math.Min(from.X, to.X)-r))-1,
		int(math.Floor(math.Min(from.Y, to.Y)-r))-1,
		int(math.Ceil(math.Max(from.X, to.X)+r))+1,
		int(math.Ceil(math.Max(from.Y, to.Y)+r))+1,
	).Intersect(dst.Rect)
	if bounds.Empty() {
		return image.Rectangle{}
	}

	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	off := geom.Pt(float64(bounds.Min.X), float64(bounds.Min.Y))
	capsule(z, from.Sub(off), to.Sub(off), r)

	cover := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	z.Draw(cover, cover.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(dst, bounds, image.NewUniform(c), image.Point{}, cover, image.Point{}, draw.Over)
	return bounds
}

// capsule adds the outline of a stadium shape around segment a-b: two
// half circles of radius r joined by straight sides.
func capsule(z *vector.Rasterizer, a, b geom.Point, r float64) {
	d := b.Sub(a)
	if l := d.Len(); l > 0 {
		d = d.Mul(1 / l)
	} else {
		d = geom.Pt(1, 0)
	}
	n := geom.Pt(-d.Y, d.X)

	start := a.Add(n.Mul(r))
	z.MoveTo(float32(start.X), float32(start.Y))
	lineTo(z, b.Add(n.Mul(r)))
	quarter(z, b, n.Mul(r), d.Mul(r))
	quarter(z, b, d.Mul(r), n.Mul(-r))
	lineTo(z, a.Add(n.Mul(-r)))
	quarter(z, a, n.Mul(-r), d.Mul(-r))
	quarter(z, a, d.Mul(-r), n.Mul(r))
	z.ClosePath()
}

// quarter appends a quarter arc around c from c+u to c+v; u and v must be
// perpendicular and of equal length.
func quarter(z *vector.Rasterizer, c, u, v geom.Point) {
	p0 := c.Add(u)
	p3 := c.Add(v)
	p1 := p0.Add(v.Mul(kappa))
	p2 := p3.Add(u.Mul(kappa))
	z.CubeTo(float32(p1.X), float32(p1.Y), float32(p2.X), float32(p2.Y), float32(p3.X), float32(p3.Y))
}

func lineTo(z *vector.Rasterizer, p geom.Point) {
	z.LineTo(float32(p.X), float32(p.Y))
}

// Erase stamps a size×size opaque white square at every integer point of
// the Bresenham line between the floored endpoints.
func Erase(dst *image.NRGBA, from, to geom.Point, size int) image.Rectangle {
	if size <= 0 || isBad(from) || isBad(to) {
		return image.Rectangle{}
	}
	x1, y1 := from.Floor()
	x2, y2 := to.Floor()
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	half := size / 2

	var dirty image.Rectangle
	for {
		r := image.Rect(x1-half, y1-half, x1-half+size, y1-half+size).Intersect(dst.Rect)
		if !r.Empty() {
			draw.Draw(dst, r, eraserWhite, image.Point{}, draw.Src)
			dirty = dirty.Union(r)
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
	return dirty
}

func isBad(p geom.Point) bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
