// Package render composes the color and outline layers into the visible
// surface and coalesces redraw requests to one per frame.
package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"colorbook/internal/viewport"
)

// Background is the color shown around the canvas.
var Background = color.NRGBA{R: 0xE5, G: 0xE7, B: 0xEB, A: 0xFF}

// Compose clears dst to bg and draws the color layer, then the outline
// layer, through t. Sampling is nearest neighbour so outline edges stay
// hard at every zoom level.
func Compose(dst draw.Image, colorLayer, outline image.Image, t viewport.Transform, bg color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	if t.Scale <= 0 {
		return
	}
	s2d := f64.Aff3{
		t.Scale, 0, t.PanX,
		0, t.Scale, t.PanY,
	}
	if colorLayer != nil {
		draw.NearestNeighbor.Transform(dst, s2d, colorLayer, colorLayer.Bounds(), draw.Over, nil)
	}
	if outline != nil {
		draw.NearestNeighbor.Transform(dst, s2d, outline, outline.Bounds(), draw.Over, nil)
	}
}

// Flatten draws the outline layer over the color layer at 1:1 into a new
// image. Neither input is modified.
func Flatten(colorLayer, outline *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(colorLayer.Rect)
	copy(out.Pix, colorLayer.Pix)
	draw.Draw(out, out.Rect, outline, outline.Rect.Min, draw.Over)
	return out
}
