package state

import (
	"image"
	"log/slog"

	"colorbook/internal/fill"
	"colorbook/internal/history"
	"colorbook/internal/render"
	"colorbook/internal/segment"
	"colorbook/internal/viewport"
)

// DefaultMaxCanvasSide bounds the longer side of a loaded image. Larger
// images are scaled down before classification.
const DefaultMaxCanvasSide = 2048

// DefaultMaxDecodePixels bounds the pixel count an encoded image may
// declare. Checked against the header, before decoding.
const DefaultMaxDecodePixels = 64 << 20

// MaxViewportSide bounds each side of the viewport, and so of the frames
// the session composes. Larger sizes are clamped.
const MaxViewportSide = 8192

type options struct {
	segment      segment.Options
	tolerance    int
	historyLimit int
	limits       viewport.Limits
	tapSlop      float64
	maxSide      int
	maxPixels    int64
	post         render.Post
	onFrame      func(frame *image.RGBA)
	onHistory    func(HistoryState)
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		tolerance:    fill.DefaultTolerance,
		historyLimit: history.DefaultLimit,
		limits:       viewport.DefaultLimits(),
		tapSlop:      viewport.DefaultTapSlop,
		maxSide:      DefaultMaxCanvasSide,
		maxPixels:    DefaultMaxDecodePixels,
	}
}

// Option configures a Session.
type Option func(*options)

// WithInkThreshold sets the channel bound below which a pixel is ink.
func WithInkThreshold(t uint8) Option {
	return func(o *options) { o.segment.InkThreshold = t }
}

// WithTolerance sets the fill tolerance. Non-positive values keep the default.
func WithTolerance(tol int) Option {
	return func(o *options) {
		if tol > 0 {
			o.tolerance = tol
		}
	}
}

// WithHistoryLimit sets how many snapshots undo can reach back through.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.historyLimit = n
		}
	}
}

// WithScaleLimits bounds the zoom level.
func WithScaleLimits(minScale, maxScale float64) Option {
	return func(o *options) {
		o.limits = viewport.Limits{MinScale: minScale, MaxScale: maxScale}
	}
}

// WithTapSlop sets how far, in screen pixels, a fill-mode contact may move
// before it becomes a pan.
func WithTapSlop(px float64) Option {
	return func(o *options) {
		if px >= 0 {
			o.tapSlop = px
		}
	}
}

// WithMaxCanvasSide sets the downscale bound for loaded images.
func WithMaxCanvasSide(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.maxSide = px
		}
	}
}

// WithMaxDecodePixels sets how many pixels an encoded image may declare
// before LoadImageData rejects it.
func WithMaxDecodePixels(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPixels = n
		}
	}
}

// WithPost sets the host frame clock. Without it, frames wait for Flush.
func WithPost(p render.Post) Option {
	return func(o *options) { o.post = p }
}

// WithOnFrame registers a callback that receives every composed frame.
// The image is reused between frames.
func WithOnFrame(f func(frame *image.RGBA)) Option {
	return func(o *options) { o.onFrame = f }
}

// WithOnHistory registers a callback run after every history change.
func WithOnHistory(f func(HistoryState)) Option {
	return func(o *options) { o.onHistory = f }
}

// WithLogger enables engine logging. By default the session is silent.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
