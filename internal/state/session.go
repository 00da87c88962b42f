// Package state holds a coloring session: the loaded line art, the color
// layer being painted, its undo history and the view onto it. Hosts drive
// a Session with commands and pointer events and receive frames back.
package state

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"colorbook/internal/fill"
	"colorbook/internal/geom"
	"colorbook/internal/history"
	"colorbook/internal/render"
	"colorbook/internal/segment"
	"colorbook/internal/stroke"
	"colorbook/internal/tool"
	"colorbook/internal/viewport"
)

// Session is one coloring surface.
//
// A Session is not safe for concurrent use. Hosts call it, and run what
// they are handed through the Post option, on a single goroutine.
type Session struct {
	id   string
	opts options
	log  *slog.Logger

	mask    *segment.Mask
	outline *image.NRGBA
	layer   *image.NRGBA

	hist    *history.Stack
	view    *viewport.Controller
	gesture *viewport.Recognizer
	sched   *render.Scheduler
	queued  []func()

	tools  tool.State
	stroke strokeState
	// drawKind is the last drawing tool selected; a stroke whose tool was
	// switched to fill before its first segment paints with it.
	drawKind tool.Kind

	viewW, viewH int
	frame        *image.RGBA
}

// New returns an empty session. Until an image is loaded every command is
// a no-op.
func New(opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Session{
		id:    uuid.NewString(),
		opts:  o,
		tools: tool.Default(),
		hist:  history.New(o.historyLimit),
		view:  viewport.NewController(o.limits),
	}
	s.log = o.logger
	if s.log == nil {
		s.log = newNopLogger()
	}
	s.log = s.log.With("session", s.id)
	s.opts.segment.Logger = s.log

	s.gesture = viewport.NewRecognizer(s.view, (*handler)(s))
	s.gesture.TapSlop = o.tapSlop
	s.gesture.DrawMode = s.tools.Tool.Draws()
	s.drawKind = tool.Brush
	if s.tools.Tool.Draws() {
		s.drawKind = s.tools.Tool
	}

	post := o.post
	if post == nil {
		post = func(f func()) { s.queued = append(s.queued, f) }
	}
	s.sched = render.NewScheduler(post, s.drawFrame)
	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Loaded reports whether an image has been loaded.
func (s *Session) Loaded() bool { return s.layer != nil }

// Size returns the canvas size, zero before the first load.
func (s *Session) Size() Size {
	if !s.Loaded() {
		return Size{}
	}
	return Size{Width: s.layer.Rect.Dx(), Height: s.layer.Rect.Dy()}
}

// Tool returns the current tool selection.
func (s *Session) Tool() tool.State { return s.tools }

// Transform returns the current view transform.
func (s *Session) Transform() viewport.Transform { return s.view.Current() }

// Gesture returns the pointer recognizer's mode.
func (s *Session) Gesture() viewport.State { return s.gesture.State() }

// HistoryState reports undo and redo availability.
func (s *Session) HistoryState() HistoryState {
	return HistoryState{
		CanUndo:  s.hist.CanUndo(),
		CanRedo:  s.hist.CanRedo(),
		Revision: s.hist.Revision(),
		Depth:    s.hist.Len(),
	}
}

// LoadImageData decodes r and loads the result. See LoadImage.
func (s *Session) LoadImageData(r io.Reader, restore bool) error {
	img, err := Decode(r, s.opts.maxPixels)
	if err != nil {
		s.log.Warn("image rejected", "err", err)
		return err
	}
	return s.LoadImage(img, restore)
}

// LoadImage replaces the session's image. The barrier mask and outline are
// derived from img. The color layer starts white, or as a copy of img when
// restore is set, which is how previously saved work is reopened. The view
// is fitted to the viewport and history is reseeded with one entry.
//
// On error the session is left as it was.
func (s *Session) LoadImage(img image.Image, restore bool) error {
	if img == nil {
		return ErrEmptyImage
	}
	src, err := normalize(img, s.opts.maxSide)
	if err != nil {
		s.log.Warn("image rejected", "err", err)
		return err
	}
	res := segment.Classify(src, s.opts.segment)

	layer := image.NewNRGBA(src.Rect)
	if restore {
		copy(layer.Pix, src.Pix)
	} else {
		for i := range layer.Pix {
			layer.Pix[i] = 0xFF
		}
	}

	s.gesture.Cancel()
	s.stroke = strokeState{}
	s.mask, s.outline, s.layer = res.Mask, res.Outline, layer

	s.hist.Reset()
	s.hist.Push(s.snapshot())
	s.view.SetInitial(s.fit())

	s.log.Info("image loaded",
		"width", src.Rect.Dx(), "height", src.Rect.Dy(),
		"restore", restore, "barrier", res.Mask.Count())
	s.notifyHistory()
	s.sched.Request()
	return nil
}

// SetColor selects the paint color for fills and brush strokes.
func (s *Session) SetColor(c color.NRGBA) { s.tools.Color = c }

// SetColorHex selects the paint color from a "#RRGGBB" string.
func (s *Session) SetColorHex(hex string) error {
	c, err := tool.ParseHex(hex)
	if err != nil {
		return err
	}
	s.SetColor(c)
	return nil
}

// SetTool selects the active tool. A stroke in progress keeps its tool.
func (s *Session) SetTool(k tool.Kind) {
	if k < tool.Fill || k > tool.Eraser {
		return
	}
	s.tools.Tool = k
	s.gesture.DrawMode = k.Draws()
	if k.Draws() {
		s.drawKind = k
	}
}

// SetBrushSize sets the brush and eraser diameter in canvas pixels.
// Non-positive sizes are ignored.
func (s *Session) SetBrushSize(px int) {
	if px <= 0 {
		return
	}
	s.tools.BrushSize = px
}

// Undo restores the previous snapshot. A stroke in progress is committed
// first. It reports whether anything changed.
func (s *Session) Undo() bool {
	if !s.Loaded() {
		return false
	}
	s.gesture.Cancel()
	pix, ok := s.hist.Undo()
	if !ok {
		return false
	}
	s.restore(pix)
	return true
}

// Redo reapplies the next snapshot. It reports whether anything changed.
func (s *Session) Redo() bool {
	if !s.Loaded() {
		return false
	}
	s.gesture.Cancel()
	pix, ok := s.hist.Redo()
	if !ok {
		return false
	}
	s.restore(pix)
	return true
}

func (s *Session) restore(pix []byte) {
	copy(s.layer.Pix, pix)
	s.notifyHistory()
	s.sched.Request()
}

// ResetZoom returns the view to the fit computed at load time.
func (s *Session) ResetZoom() {
	if !s.Loaded() {
		return
	}
	s.view.Reset()
	s.sched.Request()
}

// Export returns the color layer with the outline drawn over it, at canvas
// resolution.
func (s *Session) Export() (*image.NRGBA, error) {
	if !s.Loaded() {
		return nil, ErrNotLoaded
	}
	return render.Flatten(s.layer, s.outline), nil
}

// ExportPNG writes Export's image to w as PNG.
func (s *Session) ExportPNG(w io.Writer) error {
	img, err := s.Export()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SetViewportSize tells the session how large the visible surface is, in
// screen pixels, clamped to MaxViewportSide per side. The fit transform is recomputed; the view follows it
// unless the user has panned or zoomed.
func (s *Session) SetViewportSize(w, h int) {
	if w < 0 || h < 0 {
		return
	}
	w, h = min(w, MaxViewportSide), min(h, MaxViewportSide)
	if w == s.viewW && h == s.viewH {
		return
	}
	s.viewW, s.viewH = w, h
	if s.Loaded() {
		s.view.Refit(s.fit())
	}
	s.sched.Request()
}

func (s *Session) fit() viewport.Transform {
	return viewport.Fit(
		float64(s.layer.Rect.Dx()), float64(s.layer.Rect.Dy()),
		float64(s.viewW), float64(s.viewH))
}

// PointerDown starts a contact at screen position (x, y).
func (s *Session) PointerDown(id int, x, y float64) {
	if s.Loaded() {
		s.gesture.Down(id, geom.Pt(x, y))
	}
}

// PointerMove moves a contact.
func (s *Session) PointerMove(id int, x, y float64) {
	if s.Loaded() {
		s.gesture.Move(id, geom.Pt(x, y))
	}
}

// PointerUp ends a contact.
func (s *Session) PointerUp(id int, x, y float64) {
	if s.Loaded() {
		s.gesture.Up(id, geom.Pt(x, y))
	}
}

// PointerCancel drops every contact. A stroke in progress is committed.
func (s *Session) PointerCancel() { s.gesture.Cancel() }

// Pan moves the view by a screen-space delta, for hosts with a dedicated
// pan input such as a middle-button drag.
func (s *Session) Pan(dx, dy float64) {
	if !s.Loaded() {
		return
	}
	s.view.Pan(dx, dy)
	s.sched.Request()
}

// ZoomAt zooms the view by factor about screen point (x, y), as a scroll
// wheel does.
func (s *Session) ZoomAt(x, y, factor float64) {
	if !s.Loaded() {
		return
	}
	s.view.ZoomAt(geom.Pt(x, y), factor)
	s.sched.Request()
}

// Fill flood fills the region at canvas pixel (x, y) with the current
// color. It reports whether any pixel changed; only then is a history
// entry recorded.
func (s *Session) Fill(x, y int) bool {
	if !s.Loaded() {
		return false
	}
	n := fill.Fill(s.layer, s.mask, x, y, s.tools.Color, s.opts.tolerance)
	if n == 0 {
		s.log.Debug("fill ignored", "x", x, "y", y)
		return false
	}
	s.log.Debug("fill", "x", x, "y", y, "pixels", n)
	s.commit()
	return true
}

// Render composes the visible surface into dst.
func (s *Session) Render(dst draw.Image) {
	if !s.Loaded() {
		render.Compose(dst, nil, nil, viewport.Transform{}, render.Background)
		return
	}
	render.Compose(dst, s.layer, s.outline, s.view.Current(), render.Background)
}

// RequestRedraw schedules a frame.
func (s *Session) RequestRedraw() { s.sched.Request() }

// Flush runs frames that are waiting for the host clock. It only has work
// to do when the session was built without WithPost.
func (s *Session) Flush() {
	for len(s.queued) > 0 {
		f := s.queued[0]
		s.queued = s.queued[1:]
		f()
	}
}

func (s *Session) drawFrame() {
	if s.opts.onFrame == nil || s.viewW == 0 || s.viewH == 0 {
		return
	}
	if s.frame == nil || s.frame.Rect.Dx() != s.viewW || s.frame.Rect.Dy() != s.viewH {
		s.frame = image.NewRGBA(image.Rect(0, 0, s.viewW, s.viewH))
	}
	s.Render(s.frame)
	s.opts.onFrame(s.frame)
}

func (s *Session) snapshot() []byte { return slices.Clone(s.layer.Pix) }

func (s *Session) commit() {
	s.hist.Push(s.snapshot())
	s.notifyHistory()
	s.sched.Request()
}

func (s *Session) notifyHistory() {
	if s.opts.onHistory != nil {
		s.opts.onHistory(s.HistoryState())
	}
}

// handler receives the recognizer's gestures.
type handler Session

func (h *handler) Tap(p geom.Point) {
	s := (*Session)(h)
	if s.tools.Tool.Draws() {
		h.StrokeSegment(p, p)
		h.StrokeEnd()
		return
	}
	s.Fill(p.Floor())
}

func (h *handler) StrokeSegment(from, to geom.Point) {
	s := (*Session)(h)
	if !s.Loaded() {
		return
	}
	if !s.stroke.active {
		kind := s.tools.Tool
		if !kind.Draws() {
			kind = s.drawKind
		}
		s.stroke = strokeState{
			active: true,
			kind:   kind,
			color:  s.tools.Color,
			size:   s.tools.BrushSize,
		}
	}
	r := stroke.Segment(s.layer, from, to, s.stroke.kind, s.stroke.color, s.stroke.size)
	if r.Empty() {
		return
	}
	s.stroke.dirty = s.stroke.dirty.Union(r)
	s.sched.Request()
}

func (h *handler) StrokeEnd() {
	s := (*Session)(h)
	st := s.stroke
	s.stroke = strokeState{}
	if !st.active || st.dirty.Empty() {
		return
	}
	s.log.Debug("stroke", "tool", st.kind.String(), "bounds", st.dirty.String())
	s.commit()
}

func (h *handler) ViewChanged() { (*Session)(h).sched.Request() }
