package viewport

import (
	"colorbook/internal/geom"
)

// DefaultTapSlop is how far, in screen units, a fill-tool contact may
// wander before it stops being a tap and becomes a pan.
const DefaultTapSlop = 6.0

// Handler receives the content-side results of gesture recognition. Points
// are in canvas space.
type Handler interface {
	// Tap is a single contact released without moving beyond the slop
	// while the fill tool is active.
	Tap(p geom.Point)
	// StrokeSegment is one sampled segment of a brush or eraser stroke.
	StrokeSegment(from, to geom.Point)
	// StrokeEnd closes the current stroke.
	StrokeEnd()
	// ViewChanged is called after every transform change.
	ViewChanged()
}

// State is the recognizer's current mode.
type State int

const (
	Idle State = iota
	Tapping
	Panning
	Drawing
	Pinching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Tapping:
		return "tapping"
	case Panning:
		return "panning"
	case Drawing:
		return "drawing"
	case Pinching:
		return "pinching"
	}
	return "unknown"
}

type contact struct {
	id  int
	pos geom.Point
}

// Recognizer is the gesture state machine. Transitions are keyed on the
// number of active contacts and on whether the active tool draws:
//
//	idle     + down (draw tool)  -> drawing
//	idle     + down (fill tool)  -> tapping
//	tapping  + move beyond slop  -> panning
//	tapping  + up                -> idle, Tap (a pan when beyond slop)
//	drawing  + move              -> drawing, StrokeSegment
//	drawing  + up                -> idle, StrokeEnd
//	any      + second down       -> pinching (an open stroke is ended)
//	pinching + one contact left  -> panning
//	any      + last up           -> idle
//
// Contacts beyond the second are ignored. A Recognizer is not safe for
// concurrent use.
type Recognizer struct {
	view    *Controller
	handler Handler

	// DrawMode selects drawing instead of tap/pan for single contacts. It
	// is read when a gesture starts.
	DrawMode bool
	// TapSlop is the tap-to-pan threshold in screen units.
	TapSlop float64

	state    State
	contacts []contact

	downPos   geom.Point // tapping: where the contact went down
	lastPan   geom.Point // panning: last applied position
	lastDraw  geom.Point // drawing: previous canvas sample
	drew      bool       // drawing: at least one segment emitted
	lastDist  float64    // pinching
	lastCentr geom.Point // pinching
}

// NewRecognizer returns a recognizer driving view and reporting to h.
func NewRecognizer(view *Controller, h Handler) *Recognizer {
	return &Recognizer{view: view, handler: h, TapSlop: DefaultTapSlop}
}

// State returns the current mode.
func (r *Recognizer) State() State { return r.state }

// Contacts returns the number of tracked contacts.
func (r *Recognizer) Contacts() int { return len(r.contacts) }

func (r *Recognizer) find(id int) int {
	for i, c := range r.contacts {
		if c.id == id {
			return i
		}
	}
	return -1
}

// Down registers a new contact at screen point p.
func (r *Recognizer) Down(id int, p geom.Point) {
	if r.find(id) >= 0 || len(r.contacts) >= 2 {
		return
	}
	r.contacts = append(r.contacts, contact{id: id, pos: p})

	if len(r.contacts) == 2 {
		r.endStroke()
		r.state = Pinching
		r.lastDist = geom.Dist(r.contacts[0].pos, r.contacts[1].pos)
		r.lastCentr = geom.Mid(r.contacts[0].pos, r.contacts[1].pos)
		return
	}

	if r.DrawMode {
		r.state = Drawing
		r.lastDraw = r.view.Current().ToCanvas(p)
		r.drew = false
		return
	}
	r.state = Tapping
	r.downPos = p
}

// Move updates a contact's screen position.
func (r *Recognizer) Move(id int, p geom.Point) {
	i := r.find(id)
	if i < 0 {
		return
	}
	r.contacts[i].pos = p

	switch r.state {
	case Tapping:
		if geom.Dist(p, r.downPos) <= r.TapSlop {
			return
		}
		r.state = Panning
		r.lastPan = r.downPos
		r.pan(p)
	case Panning:
		r.pan(p)
	case Drawing:
		cur := r.view.Current().ToCanvas(p)
		r.handler.StrokeSegment(r.lastDraw, cur)
		r.lastDraw = cur
		r.drew = true
	case Pinching:
		if len(r.contacts) < 2 {
			return
		}
		dist := geom.Dist(r.contacts[0].pos, r.contacts[1].pos)
		centr := geom.Mid(r.contacts[0].pos, r.contacts[1].pos)
		r.view.Pinch(r.lastCentr, centr, r.lastDist, dist)
		r.lastDist = dist
		r.lastCentr = centr
		r.handler.ViewChanged()
	}
}

func (r *Recognizer) pan(p geom.Point) {
	r.view.Pan(p.X-r.lastPan.X, p.Y-r.lastPan.Y)
	r.lastPan = p
	r.handler.ViewChanged()
}

// Up releases a contact at screen point p.
func (r *Recognizer) Up(id int, p geom.Point) {
	i := r.find(id)
	if i < 0 {
		return
	}
	r.contacts[i].pos = p
	r.contacts = append(r.contacts[:i], r.contacts[i+1:]...)

	switch r.state {
	case Tapping:
		r.state = Idle
		if geom.Dist(p, r.downPos) > r.TapSlop {
			// moves were coalesced away; the release alone shows a drag
			r.lastPan = r.downPos
			r.pan(p)
			return
		}
		r.handler.Tap(r.view.Current().ToCanvas(p))
	case Drawing:
		cur := r.view.Current().ToCanvas(p)
		if !r.drew {
			r.handler.StrokeSegment(r.lastDraw, r.lastDraw)
		} else if cur != r.lastDraw {
			r.handler.StrokeSegment(r.lastDraw, cur)
		}
		r.drew = true
		r.endStroke()
		r.state = Idle
	case Pinching:
		if len(r.contacts) == 1 {
			r.state = Panning
			r.lastPan = r.contacts[0].pos
			return
		}
		r.state = Idle
	default:
		if len(r.contacts) == 0 {
			r.state = Idle
		}
	}
}

// Cancel drops every contact. An open stroke is ended so that what was
// already painted is committed.
func (r *Recognizer) Cancel() {
	r.endStroke()
	r.contacts = r.contacts[:0]
	r.state = Idle
}

func (r *Recognizer) endStroke() {
	if r.state != Drawing {
		return
	}
	if r.drew {
		r.handler.StrokeEnd()
	}
	r.drew = false
	r.state = Idle
}
