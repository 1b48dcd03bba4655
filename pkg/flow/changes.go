package flow

import "github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"

// ElementKind tells whether a change targets a node or an edge.
type ElementKind string

const (
	KindNode ElementKind = "node"
	KindEdge ElementKind = "edge"
)

// ChangeType classifies a change.
type ChangeType string

const (
	ChangeAdd        ChangeType = "add"
	ChangeRemove     ChangeType = "remove"
	ChangeReplace    ChangeType = "replace"
	ChangePosition   ChangeType = "position"
	ChangeSelect     ChangeType = "select"
	ChangeDimensions ChangeType = "dimensions"
	// ChangeReset means the whole node or edge list was replaced. ID is empty.
	ChangeReset ChangeType = "reset"
)

// Change describes one applied mutation. Only the fields relevant to Type are
// set: Node or Edge for add and replace, Position for position, Selected for
// select, Dimensions for dimensions.
type Change struct {
	Kind       ElementKind          `json:"kind"`
	Type       ChangeType           `json:"type"`
	ID         string               `json:"id,omitempty"`
	Node       *Node                `json:"node,omitempty"`
	Edge       *Edge                `json:"edge,omitempty"`
	Position   *geometry.XY         `json:"position,omitempty"`
	Selected   bool                 `json:"selected,omitempty"`
	Dimensions *geometry.Dimensions `json:"dimensions,omitempty"`
}

// Listener receives the changes of one mutation, after the lookup has been
// rebuilt.
type Listener func(changes []Change)

// ApplyNodeChanges returns nodes with changes applied. It is the reducer
// controlled consumers use to mirror a store from its change stream. Changes
// for other kinds and unknown ids are ignored; the input slice is not
// modified.
func ApplyNodeChanges(changes []Change, nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.clone())
	}
	index := func(id string) int {
		for i := range out {
			if out[i].ID == id {
				return i
			}
		}
		return -1
	}

	for _, c := range changes {
		if c.Kind != KindNode {
			continue
		}
		switch c.Type {
		case ChangeAdd:
			if c.Node != nil && index(c.Node.ID) < 0 {
				out = append(out, c.Node.clone())
			}
			continue
		case ChangeReset:
			continue
		}

		i := index(c.ID)
		if i < 0 {
			continue
		}
		switch c.Type {
		case ChangeRemove:
			out = append(out[:i], out[i+1:]...)
		case ChangeReplace:
			if c.Node != nil {
				out[i] = c.Node.clone()
			}
		case ChangePosition:
			if c.Position != nil {
				out[i].Position = *c.Position
			}
		case ChangeSelect:
			out[i].Selected = c.Selected
		case ChangeDimensions:
			if c.Dimensions != nil {
				out[i].Width = c.Dimensions.Width
				out[i].Height = c.Dimensions.Height
			}
		}
	}
	return out
}

// ApplyEdgeChanges is [ApplyNodeChanges] for edges.
func ApplyEdgeChanges(changes []Change, edges []Edge) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.clone())
	}
	index := func(id string) int {
		for i := range out {
			if out[i].ID == id {
				return i
			}
		}
		return -1
	}

	for _, c := range changes {
		if c.Kind != KindEdge {
			continue
		}
		if c.Type == ChangeAdd {
			if c.Edge != nil && index(c.Edge.ID) < 0 {
				out = append(out, c.Edge.clone())
			}
			continue
		}

		i := index(c.ID)
		if i < 0 {
			continue
		}
		switch c.Type {
		case ChangeRemove:
			out = append(out[:i], out[i+1:]...)
		case ChangeReplace:
			if c.Edge != nil {
				out[i] = c.Edge.clone()
			}
		case ChangeSelect:
			out[i].Selected = c.Selected
		}
	}
	return out
}
