package gesture

import (
	"github.com/1broseidon/deskgrid/internal/block"
	"github.com/1broseidon/deskgrid/internal/clock"
	"github.com/1broseidon/deskgrid/internal/grid"
)

// Phase represents the current phase of a desktop's gesture state machine
type Phase int

const (
	// PhaseIdle means no gesture is in progress
	PhaseIdle Phase = iota
	// PhasePendingLongPress means a touch is held on an edge zone, waiting for the long-press timer
	PhasePendingLongPress
	// PhaseMoving means a block is being moved locally (no drag coordinator)
	PhaseMoving
	// PhaseResizing means a corner of a block is being dragged
	PhaseResizing
	// PhaseLasso means a selection rectangle is being drawn over the background
	PhaseLasso
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePendingLongPress:
		return "pending-long-press"
	case PhaseMoving:
		return "moving"
	case PhaseResizing:
		return "resizing"
	case PhaseLasso:
		return "lasso"
	default:
		return "unknown"
	}
}

// PointerKind separates precise pointers (mouse) from coarse ones (touch, pen)
type PointerKind int

const (
	PointerPrecise PointerKind = iota
	PointerCoarse
)

// Modifiers is a bit set of keys held during a pointer event
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Selecting reports whether the chord toggles selection instead of starting a gesture.
func (m Modifiers) Selecting() bool {
	return m&(ModCtrl|ModMeta) != 0
}

// PointerEvent is a pointer sample in viewport (screen) pixels
type PointerEvent struct {
	ID   int
	Kind PointerKind
	X    float64
	Y    float64
	Mods Modifiers
}

// ResizeMode names the corner being dragged
type ResizeMode int

const (
	ResizeNone ResizeMode = iota
	ResizeNW
	ResizeNE
	ResizeSW
	ResizeSE
)

// String returns the string representation of the mode
func (m ResizeMode) String() string {
	switch m {
	case ResizeNW:
		return "nw"
	case ResizeNE:
		return "ne"
	case ResizeSW:
		return "sw"
	case ResizeSE:
		return "se"
	default:
		return "none"
	}
}

// Zone is the part of a block under the pointer
type Zone int

const (
	ZoneNone Zone = iota
	ZoneInterior
	ZoneEdge
	ZoneCorner
)

// resizeSession tracks an in-flight corner drag. Rect accumulates raw pixel
// deltas and is only quantized on release.
type resizeSession struct {
	block  block.Block
	mode   ResizeMode
	lastX  float64
	lastY  float64
	rect   grid.Rect
	bounds block.Bounds
}

// moveSession is a local move on a desktop without a drag coordinator.
type moveSession struct {
	block   block.Block
	offsetX float64
	offsetY float64
	pointer struct{ x, y float64 }
}

// pendingPress waits for the long-press timer on a touch pointer.
type pendingPress struct {
	token     int
	pointerID int
	block     block.Block
	downX     float64
	downY     float64
	lastX     float64
	lastY     float64
	timer     clock.Timer
}

// lassoState is anchored at the pointer-down position, in desktop pixels.
type lassoState struct {
	anchorX float64
	anchorY float64
	curX    float64
	curY    float64
}

func (l *lassoState) rect() grid.Rect {
	return grid.NormalizeRect(l.anchorX, l.anchorY, l.curX, l.curY)
}
