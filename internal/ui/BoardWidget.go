package ui

import (
	"image"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"colorbook/internal/render"
	"colorbook/internal/state"
)

// mousePointer is the contact id used for the primary mouse button.
const mousePointer = 0

// zoomStep is the zoom factor per scroll unit.
const zoomStep = 1.0015

// BoardWidget shows a coloring session and feeds it mouse input.
type BoardWidget struct {
	widget.BaseWidget
	session *state.Session
	raster  *canvas.Raster
	frame   *image.RGBA

	drawing bool
	panning bool
	last    fyne.Position

	OnHistory func(state.HistoryState)
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

// NewBoardWidget creates the widget and the session behind it. Frames are
// scheduled on fyne's main goroutine at frameRate.
func NewBoardWidget(frameRate int, opts ...state.Option) *BoardWidget {
	b := &BoardWidget{}
	post := render.IntervalPost(render.FrameInterval(frameRate), fyne.Do)
	opts = append(opts,
		state.WithPost(post),
		state.WithOnFrame(b.showFrame),
		state.WithOnHistory(b.historyChanged),
	)
	b.session = state.New(opts...)
	b.raster = canvas.NewRaster(b.generate)
	b.ExtendBaseWidget(b)
	return b
}

// Session returns the session the widget drives.
func (b *BoardWidget) Session() *state.Session { return b.session }

func (b *BoardWidget) historyChanged(h state.HistoryState) {
	if b.OnHistory != nil {
		b.OnHistory(h)
	}
}

func (b *BoardWidget) showFrame(f *image.RGBA) {
	b.frame = f
	b.raster.Refresh()
}

// generate is the raster callback. It returns the last frame when it
// matches the requested size and renders one directly otherwise.
func (b *BoardWidget) generate(w, h int) image.Image {
	b.session.SetViewportSize(w, h)
	if b.frame != nil && b.frame.Rect.Dx() == w && b.frame.Rect.Dy() == h {
		return b.frame
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	b.session.Render(img)
	return img
}

// scale is the number of raster pixels per fyne unit.
func (b *BoardWidget) scale() float64 {
	if app := fyne.CurrentApp(); app != nil {
		if c := app.Driver().CanvasForObject(b); c != nil {
			return float64(c.Scale())
		}
	}
	return 1
}

func (b *BoardWidget) pixels(p fyne.Position) (float64, float64) {
	s := b.scale()
	return float64(p.X) * s, float64(p.Y) * s
}

// Resize keeps the session's viewport in step with the widget.
func (b *BoardWidget) Resize(size fyne.Size) {
	b.BaseWidget.Resize(size)
	s := b.scale()
	b.session.SetViewportSize(int(math.Ceil(float64(size.Width)*s)), int(math.Ceil(float64(size.Height)*s)))
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	b.last = e.Position
	switch e.Button {
	case desktop.MouseButtonPrimary:
		b.drawing = true
		x, y := b.pixels(e.Position)
		b.session.PointerDown(mousePointer, x, y)
	case desktop.MouseButtonSecondary, desktop.MouseButtonTertiary:
		b.panning = true
	}
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	b.release(e.Position)
}

func (b *BoardWidget) release(p fyne.Position) {
	if b.drawing {
		b.drawing = false
		x, y := b.pixels(p)
		b.session.PointerUp(mousePointer, x, y)
	}
	b.panning = false
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.last = e.Position
	switch {
	case b.drawing:
		x, y := b.pixels(e.Position)
		b.session.PointerMove(mousePointer, x, y)
	case b.panning:
		s := b.scale()
		b.session.Pan(float64(e.Dragged.DX)*s, float64(e.Dragged.DY)*s)
	}
}

func (b *BoardWidget) DragEnd() { b.release(b.last) }

// Scrolled zooms about the cursor.
func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	x, y := b.pixels(e.Position)
	b.session.ZoomAt(x, y, math.Pow(zoomStep, float64(e.Scrolled.DY)))
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}

func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

func (b *BoardWidget) MouseOut() {
	if b.drawing || b.panning {
		b.session.PointerCancel()
		b.drawing, b.panning = false, false
	}
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(render.Background)
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.board.raster}
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.board.raster.Resize(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size { return fyne.NewSize(300, 300) }

func (r *boardWidgetRenderer) Refresh() {
	r.board.session.RequestRedraw()
	canvas.Refresh(r.board)
}

func (r *boardWidgetRenderer) Destroy() {}
