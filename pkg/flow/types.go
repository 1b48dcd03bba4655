package flow

import (
	"maps"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
)

// Default node size used until a node is measured.
const (
	DefaultNodeWidth  = 150.0
	DefaultNodeHeight = 36.0
)

// Built-in node types with restricted handles.
const (
	NodeTypeDefault = "default"
	NodeTypeInput   = "input"
	NodeTypeOutput  = "output"
	NodeTypeGroup   = "group"
)

// HandleType tells whether a handle starts or ends edges.
type HandleType string

const (
	HandleSource HandleType = "source"
	HandleTarget HandleType = "target"
)

// Handle is a measured connection anchor. X and Y are relative to the owning
// node's top-left corner.
type Handle struct {
	ID       string            `json:"id,omitempty"`
	Type     HandleType        `json:"type"`
	Position geometry.Position `json:"position"`
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
	Width    float64           `json:"width,omitempty"`
	Height   float64           `json:"height,omitempty"`
}

// Node is a user node. Position is relative to ParentID when set, absolute
// otherwise. Width and Height are zero until measured.
type Node struct {
	ID          string         `json:"id"`
	Type        string         `json:"type,omitempty"`
	Position    geometry.XY    `json:"position"`
	Data        map[string]any `json:"data,omitempty"`
	Width       float64        `json:"width,omitempty"`
	Height      float64        `json:"height,omitempty"`
	Selected    bool           `json:"selected,omitempty"`
	Draggable   *bool          `json:"draggable,omitempty"`
	Selectable  *bool          `json:"selectable,omitempty"`
	Connectable *bool          `json:"connectable,omitempty"`
	Hidden      bool           `json:"hidden,omitempty"`
	ParentID    string         `json:"parentId,omitempty"`
	ZIndex      int            `json:"zIndex,omitempty"`
	Handles     []Handle       `json:"handles,omitempty"`
}

// IsDraggable reports whether the node may be dragged. Unset means true.
func (n Node) IsDraggable() bool { return n.Draggable == nil || *n.Draggable }

// IsSelectable reports whether the node may be selected. Unset means true.
func (n Node) IsSelectable() bool { return n.Selectable == nil || *n.Selectable }

// IsConnectable reports whether edges may attach to the node. Unset means true.
func (n Node) IsConnectable() bool { return n.Connectable == nil || *n.Connectable }

// Measured reports whether the adapter has reported a size for the node.
func (n Node) Measured() bool { return n.Width > 0 && n.Height > 0 }

// clone copies n deeply enough that the store and callers never share the
// Data map or the Handles slice.
func (n Node) clone() Node {
	n.Data = maps.Clone(n.Data)
	if n.Handles != nil {
		n.Handles = append([]Handle(nil), n.Handles...)
	}
	return n
}

// Edge connects a source handle to a target handle.
type Edge struct {
	ID           string            `json:"id"`
	Source       string            `json:"source"`
	Target       string            `json:"target"`
	SourceHandle string            `json:"sourceHandle,omitempty"`
	TargetHandle string            `json:"targetHandle,omitempty"`
	Type         string            `json:"type,omitempty"`
	Selected     bool              `json:"selected,omitempty"`
	Animated     bool              `json:"animated,omitempty"`
	Hidden       bool              `json:"hidden,omitempty"`
	Label        string            `json:"label,omitempty"`
	Data         map[string]any    `json:"data,omitempty"`
	Style        map[string]string `json:"style,omitempty"`
}

func (e Edge) clone() Edge {
	e.Data = maps.Clone(e.Data)
	e.Style = maps.Clone(e.Style)
	return e
}

// Connection is a not-yet-created edge: the result of a connection gesture.
type Connection struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// EdgeID returns the id an edge created from c receives.
func (c Connection) EdgeID() string {
	return "xy-edge__" + c.Source + c.SourceHandle + "-" + c.Target + c.TargetHandle
}

// connects reports whether e joins the same handles as c.
func (c Connection) connects(e Edge) bool {
	return e.Source == c.Source && e.Target == c.Target &&
		e.SourceHandle == c.SourceHandle && e.TargetHandle == c.TargetHandle
}

// NodePatch is a partial node update. Nil fields are left unchanged; Data is
// merged key by key.
type NodePatch struct {
	Type        *string
	Position    *geometry.XY
	Data        map[string]any
	Width       *float64
	Height      *float64
	Selected    *bool
	Draggable   *bool
	Selectable  *bool
	Connectable *bool
	Hidden      *bool
	ParentID    *string
	ZIndex      *int
}

// EdgePatch is a partial edge update.
type EdgePatch struct {
	Type     *string
	Label    *string
	Animated *bool
	Hidden   *bool
	Selected *bool
	Data     map[string]any
	Style    map[string]string
}

// Ptr returns a pointer to v. It keeps patch literals short.
func Ptr[T any](v T) *T { return &v }

// InternalNode is the derived view of a node kept in the lookup.
type InternalNode struct {
	Node      Node
	Internals Internals
}

// Internals are the values the store derives for a node.
type Internals struct {
	PositionAbsolute geometry.XY
	Dimensions       geometry.Dimensions
	Z                int
}

// Rect returns the node's box in absolute flow coordinates.
func (n InternalNode) Rect() geometry.Rect {
	return geometry.Rect{
		X:      n.Internals.PositionAbsolute.X,
		Y:      n.Internals.PositionAbsolute.Y,
		Width:  n.Internals.Dimensions.Width,
		Height: n.Internals.Dimensions.Height,
	}
}
