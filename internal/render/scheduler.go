package render

import "time"

// Post hands f to the host so that it runs later on the same timeline as
// every other session call. It must not run f synchronously.
type Post func(f func())

// Scheduler coalesces redraw requests: any number of Request calls
// between two frames produce one draw.
type Scheduler struct {
	post    Post
	draw    func()
	pending bool
}

// NewScheduler returns a scheduler that posts through post and calls draw
// when the frame fires.
func NewScheduler(post Post, draw func()) *Scheduler {
	return &Scheduler{post: post, draw: draw}
}

// Request schedules a draw unless one is already pending.
func (s *Scheduler) Request() {
	if s.pending {
		return
	}
	s.pending = true
	s.post(s.fire)
}

// Pending reports whether a draw is scheduled.
func (s *Scheduler) Pending() bool { return s.pending }

func (s *Scheduler) fire() {
	s.pending = false
	s.draw()
}

// IntervalPost returns a Post that waits interval and then passes f to
// enqueue, which must deliver it to the session's timeline.
func IntervalPost(interval time.Duration, enqueue func(func())) Post {
	return func(f func()) {
		time.AfterFunc(interval, func() { enqueue(f) })
	}
}

// FrameInterval converts a refresh rate into a frame interval. Rates of
// zero or less give 60 Hz.
func FrameInterval(hz int) time.Duration {
	if hz <= 0 {
		hz = 60
	}
	return time.Second / time.Duration(hz)
}
