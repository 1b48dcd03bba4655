package interaction

import (
	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers are the keyboard modifiers held during an event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Meta  bool
	Alt   bool
}

// multi reports whether the multi-selection modifier is held.
func (m Modifiers) multi() bool { return m.Ctrl || m.Meta }

// TargetKind classifies what a pointer event landed on.
type TargetKind int

const (
	// TargetAuto asks the machine to hit-test the store.
	TargetAuto TargetKind = iota
	TargetPane
	TargetNode
	TargetHandle
	TargetEdge
)

// Target is what an event hit. Adapters that do their own hit testing set it;
// leaving it zero makes the machine resolve it from the event position.
type Target struct {
	Kind       TargetKind
	NodeID     string
	HandleID   string
	HandleType flow.HandleType
	EdgeID     string
}

// PointerEvent is a pointer event in container-relative screen pixels.
type PointerEvent struct {
	X, Y   float64
	Button Button
	Modifiers
	Target Target
}

func (e PointerEvent) point() geometry.XY { return geometry.XY{X: e.X, Y: e.Y} }

// WheelEvent is a wheel or trackpad scroll at a screen point.
type WheelEvent struct {
	X, Y           float64
	DeltaX, DeltaY float64
	Modifiers
}

// Key names understood by [Machine.KeyDown].
const (
	KeyEscape     = "Escape"
	KeyDelete     = "Delete"
	KeyBackspace  = "Backspace"
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// KeyEvent is a key press.
type KeyEvent struct {
	Key string
	Modifiers
}

// Handlers are optional callbacks fired by the machine after the store and
// viewport have been updated.
type Handlers struct {
	OnNodeDragStart   func(nodes []flow.Node)
	OnNodeDrag        func(nodes []flow.Node)
	OnNodeDragStop    func(nodes []flow.Node)
	OnNodeClick       func(node flow.Node)
	OnEdgeClick       func(edge flow.Edge)
	OnPaneClick       func(p geometry.XY)
	OnConnectStart    func(from flow.HandlePoint)
	OnConnect         func(c flow.Connection)
	OnConnectEnd      func(c flow.Connection, committed bool)
	OnSelectionChange func(nodes []flow.Node, edges []flow.Edge)
}
