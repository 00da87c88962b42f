package viewport

import (
	"math"

	"colorbook/internal/geom"
)

const (
	DefaultMinScale = 0.5
	DefaultMaxScale = 5.0
)

// Limits bound the zoom level.
type Limits struct {
	MinScale, MaxScale float64
}

// DefaultLimits returns the default zoom range.
func DefaultLimits() Limits {
	return Limits{MinScale: DefaultMinScale, MaxScale: DefaultMaxScale}
}

func (l Limits) clamp(s float64) float64 {
	return math.Max(l.MinScale, math.Min(s, l.MaxScale))
}

// Controller owns the current transform and the one captured when the
// image was loaded.
type Controller struct {
	current, initial Transform
	limits           Limits
}

// NewController returns a controller at Identity. Invalid limits are
// replaced by the defaults.
func NewController(l Limits) *Controller {
	if l.MinScale <= 0 || l.MaxScale < l.MinScale {
		l = DefaultLimits()
	}
	return &Controller{current: Identity, initial: Identity, limits: l}
}

func (c *Controller) Current() Transform { return c.current }

func (c *Controller) Initial() Transform { return c.initial }

func (c *Controller) Limits() Limits { return c.limits }

// SetInitial records t as the fit transform and makes it current.
func (c *Controller) SetInitial(t Transform) {
	c.initial = t
	c.current = t
}

// Refit replaces the fit transform. The current transform follows only
// if the user had not moved away from the old fit.
func (c *Controller) Refit(t Transform) {
	if c.current == c.initial {
		c.current = t
	}
	c.initial = t
}

// Reset restores the transform captured by SetInitial.
func (c *Controller) Reset() { c.current = c.initial }

// Pan translates the view by a screen-space delta.
func (c *Controller) Pan(dx, dy float64) {
	if !finite(dx) || !finite(dy) {
		return
	}
	c.current.PanX += dx
	c.current.PanY += dy
}

// ZoomAt multiplies the scale by factor, keeping the canvas point under
// the screen point center fixed. The scale is clamped first, so at the
// limits the view does not drift.
func (c *Controller) ZoomAt(center geom.Point, factor float64) {
	if !finite(factor) || factor <= 0 || !finite(center.X) || !finite(center.Y) {
		return
	}
	next := c.limits.clamp(c.current.Scale * factor)
	k := next / c.current.Scale
	c.current.PanX = center.X + (c.current.PanX-center.X)*k
	c.current.PanY = center.Y + (c.current.PanY-center.Y)*k
	c.current.Scale = next
}

// Pinch applies one two-contact sample: the centroid translation is
// applied as a pan, then the view zooms about the new centroid by the
// change in contact distance. A previous distance of zero only pans.
func (c *Controller) Pinch(prevCenter, center geom.Point, prevDist, dist float64) {
	c.Pan(center.X-prevCenter.X, center.Y-prevCenter.Y)
	if prevDist <= 0 || dist <= 0 {
		return
	}
	c.ZoomAt(center, dist/prevDist)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
