package controller

import "github.com/dshills/stagehand/internal/scene"

// State is the controller's input state.
type State int

const (
	// StateIdle means no pointer operation is in progress.
	StateIdle State = iota

	// StateDragging means the selection is being moved.
	StateDragging

	// StateResizing means the primary entity is being resized.
	StateResizing

	// StatePanning means the viewport is being moved.
	StatePanning

	// StateMarquee means a rectangular selection is being drawn.
	StateMarquee
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	case StatePanning:
		return "panning"
	case StateMarquee:
		return "marquee"
	default:
		return "unknown"
	}
}

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// Modifiers are the modifier keys held during a pointer event.
type Modifiers struct {
	// Shift toggles multi-selection membership on click.
	Shift bool

	// Marquee forces a marquee drag even when the pointer is over an
	// entity.
	Marquee bool
}

// dragTracker holds the in-progress pointer operation.
type dragTracker struct {
	button  Button
	start   scene.Point
	current scene.Point

	// anchor is the entity the drag started on.
	anchor string

	// anchorOrigin is the anchor's position at pointer-down.
	anchorOrigin scene.Point

	// origins maps each dragged top-level path to its pointer-down
	// position.
	origins map[string]scene.Point

	// startBounds is the primary's bounds at resize start.
	startBounds scene.Rect

	// moved reports whether the pointer actually displaced anything.
	moved bool
}

func (t *dragTracker) reset() {
	*t = dragTracker{}
}
