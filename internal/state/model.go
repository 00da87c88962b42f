package state

import (
	"errors"
	"image"
	"image/color"

	"colorbook/internal/tool"
)

var (
	// ErrNotLoaded is returned by operations that need an image.
	ErrNotLoaded = errors.New("no image loaded")
	// ErrEmptyImage is returned when a decoded image has no pixels.
	ErrEmptyImage = errors.New("image has no pixels")
	// ErrImageTooLarge is returned when an encoded image declares more
	// pixels than the session accepts.
	ErrImageTooLarge = errors.New("image too large")
)

// HistoryState is what hosts need to enable their undo and redo controls.
type HistoryState struct {
	CanUndo  bool   `json:"canUndo"`
	CanRedo  bool   `json:"canRedo"`
	Revision uint64 `json:"revision"`
	Depth    int    `json:"depth"`
}

// Size is a canvas size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// strokeState is the stroke being painted. Tool settings are captured at
// its first segment.
type strokeState struct {
	active bool
	kind   tool.Kind
	color  color.NRGBA
	size   int
	dirty  image.Rectangle
}
