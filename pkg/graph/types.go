package graph

import (
	"errors"
	"fmt"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
)

// Recognized node data keys.
const (
	DataLabel = "label"
	DataColor = "color"
)

// ErrDanglingEdge marks an edge whose source or target node is missing.
var ErrDanglingEdge = errors.New("dangling edge")

// =============================================================================
// Document - Flow Serialization
// =============================================================================

// Document is the canonical serialization format for a flow.
//
// The format is human-readable and designed for round-trip fidelity:
// load → edit → save → reload produces identical results.
type Document struct {
	Nodes    []flow.Node       `json:"nodes"`
	Edges    []flow.Edge       `json:"edges"`
	Viewport geometry.Viewport `json:"viewport"`
}

// NodeIDs returns the set of node ids in d.
func (d Document) NodeIDs() map[string]bool {
	ids := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		ids[n.ID] = true
	}
	return ids
}

// DanglingEdges returns the edges whose source or target is not a node of d.
func (d Document) DanglingEdges() []flow.Edge {
	ids := d.NodeIDs()
	var out []flow.Edge
	for _, e := range d.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			out = append(out, e)
		}
	}
	return out
}

// NodeLabel returns the label stored in n's data, or its id.
func NodeLabel(n flow.Node) string {
	if v, ok := n.Data[DataLabel]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return n.ID
}

// =============================================================================
// Scene - Rendered Geometry
// =============================================================================

// Scene is everything a renderer needs to draw a flow at a fixed size,
// already resolved to absolute flow coordinates.
type Scene struct {
	Width    float64           `json:"width"`
	Height   float64           `json:"height"`
	Viewport geometry.Viewport `json:"viewport"`
	Bounds   geometry.Rect     `json:"bounds"`
	Nodes    []SceneNode       `json:"nodes"`
	Edges    []SceneEdge       `json:"edges"`
	Minimap  *SceneMinimap     `json:"minimap,omitempty"`
}

// SceneNode is a node resolved to its absolute rectangle.
type SceneNode struct {
	ID       string        `json:"id"`
	Type     string        `json:"type,omitempty"`
	Label    string        `json:"label"`
	Rect     geometry.Rect `json:"rect"`
	Z        int           `json:"z"`
	Selected bool          `json:"selected,omitempty"`
	Color    string        `json:"color,omitempty"`
	Handles  []SceneHandle `json:"handles,omitempty"`
}

// SceneHandle is a handle anchor in flow coordinates.
type SceneHandle struct {
	ID       string            `json:"id,omitempty"`
	Type     flow.HandleType   `json:"type"`
	Position geometry.Position `json:"position"`
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
}

// SceneEdge is an edge resolved to an SVG path.
type SceneEdge struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Type     string  `json:"type"`
	Path     string  `json:"path"`
	Label    string  `json:"label,omitempty"`
	LabelX   float64 `json:"label_x"`
	LabelY   float64 `json:"label_y"`
	Selected bool    `json:"selected,omitempty"`
	Animated bool    `json:"animated,omitempty"`
}

// SceneMinimap is the minimap overlay: its view box and the node rects it
// draws.
type SceneMinimap struct {
	View  geometry.MinimapView `json:"view"`
	Nodes []MinimapNode        `json:"nodes"`
}

// MinimapNode is a node rectangle drawn in the minimap.
type MinimapNode struct {
	ID       string        `json:"id"`
	Rect     geometry.Rect `json:"rect"`
	Selected bool          `json:"selected,omitempty"`
}
