package engine

import (
	"cmp"
	"slices"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
)

// ============================================================================
// Derived geometry
// ============================================================================

// EdgeType returns the type an edge is drawn with.
func (i *Instance) EdgeType(e flow.Edge) string {
	if e.Type != "" {
		return e.Type
	}
	return i.opts.DefaultEdgeType
}

// EdgePaths returns the paths of the renderable edges. Edges whose endpoints
// are missing or hidden are skipped.
func (i *Instance) EdgePaths() []graph.SceneEdge {
	edges := i.store.RenderableEdges()
	out := make([]graph.SceneEdge, 0, len(edges))
	for _, e := range edges {
		params, ok := i.store.EdgePosition(e)
		if !ok {
			continue
		}
		typ := i.EdgeType(e)
		var p geometry.EdgePath
		switch typ {
		case geometry.EdgeTypeDefault, geometry.EdgeTypeBezier:
			p = geometry.GetBezierPath(geometry.BezierParams{PathParams: params, Curvature: i.opts.Curvature})
		default:
			p = geometry.GetEdgePath(typ, params)
		}
		out = append(out, graph.SceneEdge{
			ID:       e.ID,
			Source:   e.Source,
			Target:   e.Target,
			Type:     typ,
			Path:     p.Path,
			Label:    e.Label,
			LabelX:   p.LabelX,
			LabelY:   p.LabelY,
			Selected: e.Selected,
			Animated: e.Animated,
		})
	}
	return out
}

// Minimap computes the minimap of the visible nodes for an element of
// width×height pixels.
func (i *Instance) Minimap(width, height float64) graph.SceneMinimap {
	view := geometry.ComputeMinimapViewBox(i.store.NodesBounds(nil), i.view.VisibleBounds(),
		width, height, geometry.DefaultMinimapOffsetScale)
	mm := graph.SceneMinimap{View: view}
	for _, n := range i.store.InternalNodes() {
		if n.Node.Hidden {
			continue
		}
		mm.Nodes = append(mm.Nodes, graph.MinimapNode{ID: n.Node.ID, Rect: n.Rect(), Selected: n.Node.Selected})
	}
	return mm
}

// MinimapClick centers the viewport on the flow point under a click at p in
// a minimap element of width×height pixels.
func (i *Instance) MinimapClick(p geometry.XY, width, height float64) bool {
	view := geometry.ComputeMinimapViewBox(i.store.NodesBounds(nil), i.view.VisibleBounds(),
		width, height, geometry.DefaultMinimapOffsetScale)
	if view.ViewScale == 0 {
		return false
	}
	fp := geometry.MinimapToFlow(p, view)
	return i.view.SetCenter(fp.X, fp.Y, 0)
}

// SceneOptions tune [Instance.Scene]. The minimap is included when both its
// dimensions are positive.
type SceneOptions struct {
	MinimapWidth  float64
	MinimapHeight float64
}

// Scene resolves the flow into drawable geometry at the current viewport and
// container size. Nodes are ordered bottom to top.
func (i *Instance) Scene(opts SceneOptions) graph.Scene {
	w, h := i.view.Dimensions()
	s := graph.Scene{
		Width:    w,
		Height:   h,
		Viewport: i.view.Viewport(),
		Bounds:   i.store.NodesBounds(nil),
		Edges:    i.EdgePaths(),
	}

	internals := i.store.InternalNodes()
	slices.SortStableFunc(internals, func(a, b flow.InternalNode) int {
		return cmp.Compare(a.Internals.Z, b.Internals.Z)
	})
	for _, n := range internals {
		if n.Node.Hidden {
			continue
		}
		sn := graph.SceneNode{
			ID:       n.Node.ID,
			Type:     n.Node.Type,
			Label:    graph.NodeLabel(n.Node),
			Rect:     n.Rect(),
			Z:        n.Internals.Z,
			Selected: n.Node.Selected,
		}
		if c, ok := n.Node.Data[graph.DataColor].(string); ok {
			sn.Color = c
		}
		for _, hp := range i.store.Handles(n.Node.ID) {
			sn.Handles = append(sn.Handles, graph.SceneHandle{
				ID: hp.HandleID, Type: hp.Type, Position: hp.Position, X: hp.X, Y: hp.Y,
			})
		}
		s.Nodes = append(s.Nodes, sn)
	}

	if opts.MinimapWidth > 0 && opts.MinimapHeight > 0 {
		mm := i.Minimap(opts.MinimapWidth, opts.MinimapHeight)
		s.Minimap = &mm
	}
	return s
}

// ============================================================================
// Documents
// ============================================================================

// ToObject snapshots the flow as a document.
func (i *Instance) ToObject() graph.Document {
	return graph.Document{
		Nodes:    i.store.Nodes(),
		Edges:    i.store.Edges(),
		Viewport: i.view.Viewport(),
	}
}

// FromObject replaces the flow with a document. A document viewport with
// zero zoom leaves the viewport unchanged.
func (i *Instance) FromObject(doc graph.Document) {
	i.store.SetNodes(doc.Nodes)
	i.store.SetEdges(doc.Edges)
	if doc.Viewport.Zoom > 0 {
		i.view.SetViewport(doc.Viewport)
	}
	i.logger.Debug("loaded flow", "nodes", i.store.NodeCount(), "edges", i.store.EdgeCount())
	i.maybeFitOnInit()
}
