package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colorbook/internal/geom"
)

func TestTransformRoundTrip(t *testing.T) {
	tr := Transform{Scale: 2.5, PanX: 30, PanY: -12}
	p := geom.Pt(17.25, 3.5)
	back := tr.ToCanvas(tr.ToScreen(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
	assert.Equal(t, geom.Pt(5, 5), Transform{Scale: 2, PanX: 10, PanY: 10}.ToCanvas(geom.Pt(20, 20)))
}

func TestFit(t *testing.T) {
	tr := Fit(200, 100, 400, 400)
	assert.Equal(t, Transform{Scale: 2, PanX: 0, PanY: 100}, tr)

	tr = Fit(1000, 500, 300, 600)
	assert.InDelta(t, 0.3, tr.Scale, 1e-12)
	assert.InDelta(t, 0, tr.PanX, 1e-9)
	assert.InDelta(t, 225, tr.PanY, 1e-9)

	assert.Equal(t, Identity, Fit(100, 100, 0, 0))
}

func TestPinchDoublesAboutCenter(t *testing.T) {
	c := NewController(DefaultLimits())
	center := geom.Pt(150, 120)
	before := c.Current().ToCanvas(center)

	c.Pinch(center, center, 100, 200)
	assert.InDelta(t, 2.0, c.Current().Scale, 1e-12)
	after := c.Current().ToCanvas(center)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestPinchClampsWithoutDrift(t *testing.T) {
	c := NewController(DefaultLimits())
	center := geom.Pt(50, 50)
	anchor := c.Current().ToCanvas(center)
	for i := 0; i < 10; i++ {
		c.Pinch(center, center, 100, 300)
	}
	assert.Equal(t, DefaultMaxScale, c.Current().Scale)
	got := c.Current().ToCanvas(center)
	assert.InDelta(t, anchor.X, got.X, 1e-9)
	assert.InDelta(t, anchor.Y, got.Y, 1e-9)

	for i := 0; i < 10; i++ {
		c.Pinch(center, center, 300, 10)
	}
	assert.Equal(t, DefaultMinScale, c.Current().Scale)
}

func TestPinchZeroDistanceOnlyPans(t *testing.T) {
	c := NewController(DefaultLimits())
	c.Pinch(geom.Pt(0, 0), geom.Pt(5, 7), 0, 80)
	assert.Equal(t, Transform{Scale: 1, PanX: 5, PanY: 7}, c.Current())

	c.Pinch(geom.Pt(5, 7), geom.Pt(5, 7), 80, 0)
	assert.Equal(t, 1.0, c.Current().Scale)
	assert.False(t, math.IsNaN(c.Current().PanX))
}

func TestResetRestoresFit(t *testing.T) {
	c := NewController(DefaultLimits())
	fit := Fit(640, 480, 1024, 700)
	c.SetInitial(fit)
	c.Pan(40, -3)
	c.ZoomAt(geom.Pt(10, 10), 3)
	c.Pinch(geom.Pt(1, 1), geom.Pt(90, 4), 20, 35)
	require.NotEqual(t, fit, c.Current())

	c.Reset()
	assert.Equal(t, fit, c.Current())
	assert.Equal(t, fit, c.Initial())
}

func TestRefitFollowsOnlyUntouchedView(t *testing.T) {
	c := NewController(DefaultLimits())
	c.SetInitial(Fit(100, 100, 200, 200))
	next := Fit(100, 100, 400, 300)
	c.Refit(next)
	assert.Equal(t, next, c.Current())

	c.Pan(5, 5)
	moved := c.Current()
	c.Refit(Fit(100, 100, 50, 50))
	assert.Equal(t, moved, c.Current())
	assert.Equal(t, Fit(100, 100, 50, 50), c.Initial())
}

func TestControllerRejectsBadInput(t *testing.T) {
	c := NewController(Limits{MinScale: 3, MaxScale: 1})
	assert.Equal(t, DefaultLimits(), c.Limits())
	c.Pan(math.NaN(), 1)
	c.ZoomAt(geom.Pt(0, 0), math.Inf(1))
	c.ZoomAt(geom.Pt(0, 0), -2)
	assert.Equal(t, Identity, c.Current())
}

type recorded struct {
	taps     []geom.Point
	segments [][2]geom.Point
	ends     int
	views    int
}

func (r *recorded) Tap(p geom.Point) { r.taps = append(r.taps, p) }

func (r *recorded) StrokeSegment(from, to geom.Point) {
	r.segments = append(r.segments, [2]geom.Point{from, to})
}

func (r *recorded) StrokeEnd() { r.ends++ }

func (r *recorded) ViewChanged() { r.views++ }

func newRecognizer(drawMode bool) (*Recognizer, *Controller, *recorded) {
	c := NewController(DefaultLimits())
	c.SetInitial(Transform{Scale: 2, PanX: 10, PanY: 20})
	h := &recorded{}
	r := NewRecognizer(c, h)
	r.DrawMode = drawMode
	return r, c, h
}

func TestTapFills(t *testing.T) {
	r, c, h := newRecognizer(false)
	r.Down(1, geom.Pt(30, 40))
	assert.Equal(t, Tapping, r.State())
	r.Move(1, geom.Pt(33, 42))
	assert.Equal(t, Tapping, r.State(), "within slop")
	r.Up(1, geom.Pt(32, 40))

	assert.Equal(t, Idle, r.State())
	require.Len(t, h.taps, 1)
	assert.Equal(t, geom.Pt(11, 10), h.taps[0])
	assert.Equal(t, c.Initial(), c.Current())
}

func TestDragPansInsteadOfTap(t *testing.T) {
	r, c, h := newRecognizer(false)
	r.Down(1, geom.Pt(30, 40))
	r.Move(1, geom.Pt(50, 40))
	assert.Equal(t, Panning, r.State())
	r.Move(1, geom.Pt(60, 45))
	r.Up(1, geom.Pt(60, 45))

	assert.Empty(t, h.taps)
	assert.Equal(t, Idle, r.State())
	assert.Equal(t, Transform{Scale: 2, PanX: 40, PanY: 25}, c.Current())
	assert.Equal(t, 2, h.views)
}

func TestReleaseBeyondSlopWithoutMovesPans(t *testing.T) {
	r, c, h := newRecognizer(false)
	r.Down(1, geom.Pt(30, 40))
	r.Up(1, geom.Pt(60, 45))

	assert.Empty(t, h.taps)
	assert.Equal(t, Idle, r.State())
	assert.Equal(t, Transform{Scale: 2, PanX: 40, PanY: 25}, c.Current())
	assert.Equal(t, 1, h.views)
}

func TestDrawingEmitsCanvasSegments(t *testing.T) {
	r, _, h := newRecognizer(true)
	r.Down(1, geom.Pt(10, 20))
	assert.Equal(t, Drawing, r.State())
	r.Move(1, geom.Pt(20, 20))
	r.Move(1, geom.Pt(20, 40))
	r.Up(1, geom.Pt(20, 40))

	require.Len(t, h.segments, 2)
	assert.Equal(t, [2]geom.Point{geom.Pt(0, 0), geom.Pt(5, 0)}, h.segments[0])
	assert.Equal(t, [2]geom.Point{geom.Pt(5, 0), geom.Pt(5, 10)}, h.segments[1])
	assert.Equal(t, 1, h.ends)
	assert.Zero(t, h.views)
}

func TestDrawingTapMakesDot(t *testing.T) {
	r, _, h := newRecognizer(true)
	r.Down(3, geom.Pt(30, 30))
	r.Up(3, geom.Pt(30, 30))
	require.Len(t, h.segments, 1)
	assert.Equal(t, h.segments[0][0], h.segments[0][1])
	assert.Equal(t, 1, h.ends)
}

func TestSecondContactEndsStrokeAndPinches(t *testing.T) {
	r, c, h := newRecognizer(true)
	r.Down(1, geom.Pt(100, 100))
	r.Move(1, geom.Pt(110, 100))
	r.Down(2, geom.Pt(210, 100))
	assert.Equal(t, Pinching, r.State())
	assert.Equal(t, 1, h.ends)

	scale := c.Current().Scale
	r.Move(2, geom.Pt(310, 100))
	assert.InDelta(t, scale*2, c.Current().Scale, 1e-9)

	r.Up(2, geom.Pt(310, 100))
	assert.Equal(t, Panning, r.State())
	pan := c.Current()
	r.Move(1, geom.Pt(115, 104))
	assert.Equal(t, pan.PanX+5, c.Current().PanX)
	assert.Equal(t, pan.PanY+4, c.Current().PanY)

	r.Up(1, geom.Pt(115, 104))
	assert.Equal(t, Idle, r.State())
	assert.Len(t, h.segments, 1, "no stroke resumes after the pinch")
	assert.Empty(t, h.taps)
}

func TestTwoFingerDragPans(t *testing.T) {
	r, c, _ := newRecognizer(false)
	r.Down(1, geom.Pt(0, 0))
	r.Down(2, geom.Pt(100, 0))
	r.Move(1, geom.Pt(20, 10))
	r.Move(2, geom.Pt(120, 10))
	assert.InDelta(t, 2, c.Current().Scale, 1e-9)
	assert.InDelta(t, 30, c.Current().PanX, 1e-9)
	assert.InDelta(t, 30, c.Current().PanY, 1e-9)
}

func TestThirdContactAndUnknownIgnored(t *testing.T) {
	r, _, h := newRecognizer(false)
	r.Down(1, geom.Pt(0, 0))
	r.Down(2, geom.Pt(50, 0))
	r.Down(3, geom.Pt(90, 90))
	assert.Equal(t, 2, r.Contacts())
	r.Move(9, geom.Pt(1, 1))
	r.Up(9, geom.Pt(1, 1))
	r.Down(1, geom.Pt(5, 5))
	assert.Equal(t, 2, r.Contacts())

	r.Cancel()
	assert.Equal(t, Idle, r.State())
	assert.Zero(t, r.Contacts())
	assert.Empty(t, h.taps)
}

func TestCancelCommitsOpenStroke(t *testing.T) {
	r, _, h := newRecognizer(true)
	r.Down(1, geom.Pt(0, 0))
	r.Move(1, geom.Pt(4, 4))
	r.Cancel()
	assert.Equal(t, 1, h.ends)
	assert.Equal(t, Idle, r.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pinching", Pinching.String())
	assert.Equal(t, "unknown", State(42).String())
}
