package graph

import (
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"

	xerrors "github.com/MomoChenisMe/xyflow-sub001/pkg/errors"
)

// ValidateOptions tunes [Validate].
type ValidateOptions struct {
	// Strict rejects edges whose source or target node is missing.
	Strict bool
}

// Validate checks a document before it is loaded into an engine.
//
// It rejects empty or malformed ids, duplicate node or edge ids, unknown edge
// types and nodes whose parent is missing. Dangling edges are an error only in
// strict mode; the returned error then wraps [ErrDanglingEdge].
func Validate(doc Document, opts ValidateOptions) error {
	nodes := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if err := xerrors.ValidateElementID("node", n.ID); err != nil {
			return err
		}
		if nodes[n.ID] {
			return xerrors.New(xerrors.ErrCodeDuplicateID, "duplicate node id %q", n.ID)
		}
		nodes[n.ID] = true
	}
	for _, n := range doc.Nodes {
		if n.ParentID != "" && !nodes[n.ParentID] {
			return xerrors.New(xerrors.ErrCodeInvalidDocument, "node %q: parent %q not found", n.ID, n.ParentID)
		}
	}

	edges := make(map[string]bool, len(doc.Edges))
	for _, e := range doc.Edges {
		if err := xerrors.ValidateElementID("edge", e.ID); err != nil {
			return err
		}
		if edges[e.ID] {
			return xerrors.New(xerrors.ErrCodeDuplicateID, "duplicate edge id %q", e.ID)
		}
		edges[e.ID] = true
		if !geometry.ValidEdgeType(e.Type) {
			return xerrors.New(xerrors.ErrCodeInvalidEdgeType, "edge %q: unknown type %q", e.ID, e.Type)
		}
		if opts.Strict && (!nodes[e.Source] || !nodes[e.Target]) {
			return xerrors.Wrap(xerrors.ErrCodeDanglingEdge, ErrDanglingEdge,
				"edge %q: %s -> %s", e.ID, e.Source, e.Target)
		}
	}

	if doc.Viewport.Zoom < 0 {
		return xerrors.New(xerrors.ErrCodeInvalidDocument, "viewport zoom must be positive, got %v", doc.Viewport.Zoom)
	}
	return nil
}
