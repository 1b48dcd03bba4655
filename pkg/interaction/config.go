package interaction

import (
	"fmt"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
)

// SelectionMode decides which nodes a selection box picks.
type SelectionMode string

const (
	// SelectionPartial selects nodes the box overlaps.
	SelectionPartial SelectionMode = "partial"
	// SelectionFull selects nodes the box fully contains.
	SelectionFull SelectionMode = "full"
)

// ConnectionMode decides which handles a connection may end on.
type ConnectionMode string

const (
	// ConnectionStrict only joins a source handle to a target handle.
	ConnectionStrict ConnectionMode = "strict"
	// ConnectionLoose joins any two handles on different nodes.
	ConnectionLoose ConnectionMode = "loose"
)

// Defaults.
const (
	DefaultDragThreshold    = 1.0
	DefaultConnectionRadius = 20.0
	DefaultHandleRadius     = 8.0
	DefaultNudgeStep        = 5.0
	DefaultNudgeStepLarge   = 20.0
	WheelZoomSpeed          = 0.002
	DoubleClickZoomFactor   = 2.0
)

// Config tunes gesture recognition.
type Config struct {
	// NodeDragThreshold is the screen distance a pressed node must travel
	// before it drags.
	NodeDragThreshold float64
	// ConnectionRadius is the screen distance within which a dragged
	// connection snaps to a handle.
	ConnectionRadius float64
	// HandleRadius is the screen distance within which a press starts a
	// connection from a handle.
	HandleRadius float64

	SelectionMode  SelectionMode
	ConnectionMode ConnectionMode

	// SelectionOnDrag makes a plain pane drag draw a selection box instead
	// of panning. Shift always draws a box.
	SelectionOnDrag   bool
	PanOnDrag         bool
	PanOnScroll       bool
	ZoomOnScroll      bool
	ZoomOnDoubleClick bool

	NodesDraggable     bool
	NodesConnectable   bool
	ElementsSelectable bool

	SnapToGrid bool
	SnapGrid   geometry.XY

	NudgeStep      float64
	NudgeStepLarge float64

	// IsValidConnection can veto a connection before it is committed.
	IsValidConnection func(flow.Connection) bool
}

// DefaultConfig returns the stock gesture settings.
func DefaultConfig() Config {
	return Config{
		NodeDragThreshold:  DefaultDragThreshold,
		ConnectionRadius:   DefaultConnectionRadius,
		HandleRadius:       DefaultHandleRadius,
		SelectionMode:      SelectionPartial,
		ConnectionMode:     ConnectionStrict,
		PanOnDrag:          true,
		ZoomOnScroll:       true,
		ZoomOnDoubleClick:  true,
		NodesDraggable:     true,
		NodesConnectable:   true,
		ElementsSelectable: true,
		SnapGrid:           geometry.XY{X: 15, Y: 15},
		NudgeStep:          DefaultNudgeStep,
		NudgeStepLarge:     DefaultNudgeStepLarge,
	}
}

// ParseSelectionMode converts a config string.
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch SelectionMode(s) {
	case SelectionPartial, SelectionFull:
		return SelectionMode(s), nil
	case "":
		return SelectionPartial, nil
	}
	return "", fmt.Errorf("unknown selection mode %q", s)
}

// ParseConnectionMode converts a config string.
func ParseConnectionMode(s string) (ConnectionMode, error) {
	switch ConnectionMode(s) {
	case ConnectionStrict, ConnectionLoose:
		return ConnectionMode(s), nil
	case "":
		return ConnectionStrict, nil
	}
	return "", fmt.Errorf("unknown connection mode %q", s)
}
