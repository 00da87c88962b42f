// Package geom holds the small amount of 2D geometry shared by the
// coloring engine. Canvas space and screen space both use it; which space a
// value lives in is up to the caller.
package geom

import "math"

// Point is a position in either canvas or screen space.
type Point struct {
	X, Y float64
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }

// Len returns the Euclidean length of p as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the distance between p and q.
func Dist(p, q Point) float64 { return p.Sub(q).Len() }

// Mid returns the midpoint of p and q.
func Mid(p, q Point) Point { return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2} }

// Floor returns the integer pixel containing p.
func (p Point) Floor() (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}
