package viewport

import (
	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
)

// FitViewOptions tune [Model.FitView] and [Model.FitBounds]. Zero MinZoom or
// MaxZoom fall back to the model's bounds. Padding is a fraction of the
// content size.
type FitViewOptions struct {
	Padding            float64
	IncludeHiddenNodes bool
	MinZoom            float64
	MaxZoom            float64
	// Nodes restricts fitting to these ids. Empty means every node.
	Nodes []string
}

// DefaultFitViewOptions returns the options used when fitting on init.
func DefaultFitViewOptions() FitViewOptions {
	return FitViewOptions{Padding: DefaultFitViewPadding}
}

// NodeSource provides the derived node boxes to fit.
type NodeSource interface {
	InternalNodes() []flow.InternalNode
}

// FitView frames the eligible nodes of src. Nodes without a measured or
// explicit size count as the store's default size, [flow.DefaultNodeWidth] x
// [flow.DefaultNodeHeight] (150x36) unless configured. It is a no-op returning false when no node is eligible or the
// container has no area.
func (m *Model) FitView(src NodeSource, opts FitViewOptions) bool {
	var only map[string]bool
	if len(opts.Nodes) > 0 {
		only = make(map[string]bool, len(opts.Nodes))
		for _, id := range opts.Nodes {
			only[id] = true
		}
	}

	var rects []geometry.Rect
	for _, n := range src.InternalNodes() {
		if n.Node.Hidden && !opts.IncludeHiddenNodes {
			continue
		}
		if only != nil && !only[n.Node.ID] {
			continue
		}
		rects = append(rects, n.Rect())
	}
	if len(rects) == 0 {
		return false
	}
	return m.FitBounds(geometry.GetRectsBounds(rects), opts)
}

// FitBounds frames a flow-space rectangle.
func (m *Model) FitBounds(bounds geometry.Rect, opts FitViewOptions) bool {
	if bounds.Width <= 0 && bounds.Height <= 0 {
		return false
	}
	minZoom, maxZoom := m.minZoom, m.maxZoom
	if opts.MinZoom > 0 {
		minZoom = max(opts.MinZoom, m.minZoom)
	}
	if opts.MaxZoom > 0 {
		maxZoom = min(opts.MaxZoom, m.maxZoom)
	}
	if maxZoom < minZoom {
		maxZoom = minZoom
	}

	// a degenerate axis must not dominate the zoom
	if bounds.Width <= 0 {
		bounds.Width = bounds.Height
	}
	if bounds.Height <= 0 {
		bounds.Height = bounds.Width
	}

	vp, ok := geometry.GetViewportForBounds(bounds, m.width, m.height, minZoom, maxZoom, opts.Padding)
	if !ok {
		m.logger.Debug("fit skipped, container has no size")
		return false
	}
	m.SetViewport(vp)
	return true
}
