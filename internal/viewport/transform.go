// Package viewport maps between canvas space and screen space and turns
// pointer contacts into pans, pinch zooms, taps and stroke segments.
package viewport

import (
	"math"

	"colorbook/internal/geom"
)

// Transform maps canvas space to screen space: screen = canvas*Scale + Pan.
type Transform struct {
	Scale      float64
	PanX, PanY float64
}

// Identity is the transform with unit scale and no pan.
var Identity = Transform{Scale: 1}

// ToCanvas maps a screen point into canvas space.
func (t Transform) ToCanvas(p geom.Point) geom.Point {
	return geom.Pt((p.X-t.PanX)/t.Scale, (p.Y-t.PanY)/t.Scale)
}

// ToScreen maps a canvas point into screen space.
func (t Transform) ToScreen(p geom.Point) geom.Point {
	return geom.Pt(p.X*t.Scale+t.PanX, p.Y*t.Scale+t.PanY)
}

// Fit scales a canvas of cw×ch to fit entirely inside a vw×vh view and
// centres it. Unknown sizes give Identity.
func Fit(cw, ch, vw, vh float64) Transform {
	if cw <= 0 || ch <= 0 || vw <= 0 || vh <= 0 {
		return Identity
	}
	s := math.Min(vw/cw, vh/ch)
	return Transform{
		Scale: s,
		PanX:  (vw - cw*s) / 2,
		PanY:  (vh - ch*s) / 2,
	}
}
