package engine

import (
	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
)

// Measurement is what an adapter read back after drawing: the container
// size, node sizes and handle bounds relative to their node.
// Zero or missing entries are left unchanged.
type Measurement struct {
	Container geometry.Dimensions
	Nodes     map[string]geometry.Dimensions
	Handles   map[string][]flow.Handle
}

// Measure applies post-paint measurements and performs a pending
// FitViewOnInit once every visible node has a size.
func (i *Instance) Measure(m Measurement) {
	if m.Container.Width > 0 && m.Container.Height > 0 {
		i.view.SetDimensions(m.Container.Width, m.Container.Height)
	}
	if len(m.Nodes) > 0 {
		i.store.SetDimensions(m.Nodes)
	}
	for id, hs := range m.Handles {
		i.store.SetHandles(id, hs)
	}
	i.maybeFitOnInit()
}

// NodesInitialized reports whether there is at least one visible node and
// every visible node has been measured.
func (i *Instance) NodesInitialized() bool {
	visible := 0
	for _, n := range i.store.Nodes() {
		if n.Hidden && !i.opts.FitViewOptions.IncludeHiddenNodes {
			continue
		}
		if !n.Measured() {
			return false
		}
		visible++
	}
	return visible > 0
}

// FitPending reports whether FitViewOnInit has not run yet.
func (i *Instance) FitPending() bool { return i.pendingFit }

func (i *Instance) maybeFitOnInit() {
	if !i.pendingFit || !i.NodesInitialized() {
		return
	}
	if i.view.FitView(i.store, i.opts.FitViewOptions) {
		i.pendingFit = false
		i.logger.Debug("fit view on init", "viewport", i.view.Viewport())
	}
}
