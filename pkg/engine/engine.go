package engine

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/interaction"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/viewport"
)

// Options configure an [Instance]. Start from [DefaultOptions].
type Options struct {
	MinZoom  float64
	MaxZoom  float64
	Viewport geometry.Viewport

	DefaultNodeWidth     float64
	DefaultNodeHeight    float64
	StrictEdges          bool
	ElevateNodesOnSelect bool

	// DefaultEdgeType is used for edges without a type.
	DefaultEdgeType string
	// Curvature is used for bezier edges. Zero means geometry.DefaultCurvature.
	Curvature float64

	FitViewOnInit  bool
	FitViewOptions viewport.FitViewOptions

	// Interaction nil means interaction.DefaultConfig().
	Interaction *interaction.Config
	Handlers    interaction.Handlers

	Logger *log.Logger
}

// DefaultOptions returns the stock engine settings.
func DefaultOptions() Options {
	return Options{
		MinZoom:           viewport.DefaultMinZoom,
		MaxZoom:           viewport.DefaultMaxZoom,
		Viewport:          geometry.Viewport{Zoom: 1},
		DefaultNodeWidth:  flow.DefaultNodeWidth,
		DefaultNodeHeight: flow.DefaultNodeHeight,
		DefaultEdgeType:   geometry.EdgeTypeDefault,
		FitViewOptions:    viewport.DefaultFitViewOptions(),
	}
}

type listenerEntry struct {
	id int
	fn func(Event)
}

// Instance is the flow state: store, viewport and interaction machine plus
// the subscriber list.
type Instance struct {
	opts    Options
	store   *flow.Store
	view    *viewport.Model
	machine *interaction.Machine
	logger  *log.Logger

	handlers   interaction.Handlers
	pendingFit bool

	listeners    []listenerEntry
	nextListener int
}

// New returns an empty instance.
func New(opts Options) *Instance {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.DefaultEdgeType == "" {
		opts.DefaultEdgeType = geometry.EdgeTypeDefault
	}

	inst := &Instance{
		opts:       opts,
		logger:     logger,
		pendingFit: opts.FitViewOnInit,
	}
	inst.store = flow.New(
		flow.WithLogger(logger),
		flow.WithDefaultNodeSize(opts.DefaultNodeWidth, opts.DefaultNodeHeight),
		flow.WithStrictEdges(opts.StrictEdges),
		flow.WithElevateNodesOnSelect(opts.ElevateNodesOnSelect),
	)

	cfg := interaction.DefaultConfig()
	if opts.Interaction != nil {
		cfg = *opts.Interaction
	}
	inst.view = viewport.New(
		viewport.WithZoomRange(opts.MinZoom, opts.MaxZoom),
		viewport.WithInitial(opts.Viewport),
		viewport.WithSnapGrid(cfg.SnapGrid),
		viewport.WithLogger(logger),
	)

	inst.handlers = opts.Handlers
	inst.machine = interaction.New(inst.store, inst.view,
		interaction.WithConfig(cfg),
		interaction.WithHandlers(inst.wrapHandlers(opts.Handlers)),
		interaction.WithLogger(logger),
	)

	inst.store.Subscribe(inst.onChanges)
	inst.view.OnChange(inst.onViewport)
	return inst
}

// Store returns the node/edge store.
func (i *Instance) Store() *flow.Store { return i.store }

// View returns the viewport model.
func (i *Instance) View() *viewport.Model { return i.view }

// Machine returns the interaction machine adapters feed input events to.
func (i *Instance) Machine() *interaction.Machine { return i.machine }

// Options returns the options the instance was built with.
func (i *Instance) Options() Options { return i.opts }

// SetHandlers replaces the gesture callbacks.
func (i *Instance) SetHandlers(h interaction.Handlers) {
	i.handlers = h
	i.machine.SetHandlers(i.wrapHandlers(h))
}

// ============================================================================
// State accessors
// ============================================================================

// Nodes returns a copy of the nodes.
func (i *Instance) Nodes() []flow.Node { return i.store.Nodes() }

// Edges returns a copy of the edges.
func (i *Instance) Edges() []flow.Edge { return i.store.Edges() }

// Node returns the node with the given id.
func (i *Instance) Node(id string) (flow.Node, bool) { return i.store.Node(id) }

// Edge returns the edge with the given id.
func (i *Instance) Edge(id string) (flow.Edge, bool) { return i.store.Edge(id) }

// NodeLookup returns the derived nodes keyed by id.
func (i *Instance) NodeLookup() map[string]flow.InternalNode {
	nodes := i.store.InternalNodes()
	out := make(map[string]flow.InternalNode, len(nodes))
	for _, n := range nodes {
		out[n.Node.ID] = n
	}
	return out
}

// Viewport returns the current transform.
func (i *Instance) Viewport() geometry.Viewport { return i.view.Viewport() }

// SelectedNodes returns the selected nodes.
func (i *Instance) SelectedNodes() []flow.Node { return i.store.SelectedNodes() }

// SelectedEdges returns the selected edges.
func (i *Instance) SelectedEdges() []flow.Edge { return i.store.SelectedEdges() }

// ConnectionState returns the connection being dragged, if any.
func (i *Instance) ConnectionState() (interaction.ConnectionState, bool) {
	return i.machine.Connection()
}

// SelectionBox returns the selection box being drawn, if any.
func (i *Instance) SelectionBox() (geometry.Rect, bool) { return i.machine.SelectionBox() }

// NodesBounds returns the bounds of the visible nodes.
func (i *Instance) NodesBounds() geometry.Rect { return i.store.NodesBounds(nil) }

// ScreenToFlowPosition converts a container-relative screen point.
func (i *Instance) ScreenToFlowPosition(p geometry.XY) geometry.XY {
	return i.view.ScreenToFlowPosition(p)
}

// FlowToScreenPosition converts a flow point to the screen.
func (i *Instance) FlowToScreenPosition(p geometry.XY) geometry.XY {
	return i.view.FlowToScreenPosition(p)
}

// ============================================================================
// Mutators
// ============================================================================

// SetNodes replaces every node.
func (i *Instance) SetNodes(nodes []flow.Node) {
	i.store.SetNodes(nodes)
	i.maybeFitOnInit()
}

// SetEdges replaces every edge.
func (i *Instance) SetEdges(edges []flow.Edge) { i.store.SetEdges(edges) }

// AddNode adds one node and returns it as stored.
func (i *Instance) AddNode(n flow.Node) (flow.Node, bool) {
	added := i.store.AddNodes(n)
	if len(added) == 0 {
		return flow.Node{}, false
	}
	return added[0], true
}

// AddNodes adds nodes and returns the ones accepted.
func (i *Instance) AddNodes(nodes ...flow.Node) []flow.Node { return i.store.AddNodes(nodes...) }

// AddEdge adds one edge and returns it as stored.
func (i *Instance) AddEdge(e flow.Edge) (flow.Edge, bool) {
	added := i.store.AddEdges(e)
	if len(added) == 0 {
		return flow.Edge{}, false
	}
	return added[0], true
}

// AddEdges adds edges and returns the ones accepted.
func (i *Instance) AddEdges(edges ...flow.Edge) []flow.Edge { return i.store.AddEdges(edges...) }

// Connect adds the edge for a connection unless an equal one exists.
func (i *Instance) Connect(c flow.Connection) (flow.Edge, bool) { return i.store.AddEdge(c) }

// UpdateNode applies a patch to a node. Unknown ids are a no-op.
func (i *Instance) UpdateNode(id string, p flow.NodePatch) bool { return i.store.UpdateNode(id, p) }

// UpdateNodeFunc applies the patch fn builds from the current node. Fields the
// patch leaves nil are kept.
func (i *Instance) UpdateNodeFunc(id string, fn func(flow.Node) flow.NodePatch) bool {
	return i.store.UpdateNodeFunc(id, fn)
}

// UpdateNodeData merges data into a node's data, or replaces it.
func (i *Instance) UpdateNodeData(id string, data map[string]any, replace bool) bool {
	return i.store.UpdateNodeData(id, data, replace)
}

// UpdateEdge applies a patch to an edge. Unknown ids are a no-op.
func (i *Instance) UpdateEdge(id string, p flow.EdgePatch) bool { return i.store.UpdateEdge(id, p) }

// DeleteElements removes nodes and edges, cascading to children and to edges
// touching removed nodes.
func (i *Instance) DeleteElements(nodeIDs, edgeIDs []string) flow.Deleted {
	return i.store.DeleteElements(nodeIDs, edgeIDs)
}

// SetViewport replaces the transform. Zoom is clamped.
func (i *Instance) SetViewport(vp geometry.Viewport) bool { return i.view.SetViewport(vp) }

// PanBy moves the viewport by a screen delta.
func (i *Instance) PanBy(dx, dy float64) bool { return i.view.PanBy(dx, dy) }

// ZoomIn zooms in one step around the container center.
func (i *Instance) ZoomIn() bool { return i.view.ZoomIn() }

// ZoomOut zooms out one step around the container center.
func (i *Instance) ZoomOut() bool { return i.view.ZoomOut() }

// ZoomTo zooms to level around the container center.
func (i *Instance) ZoomTo(level float64) bool { return i.view.ZoomTo(level) }

// FitView frames the nodes with the instance's fit options.
func (i *Instance) FitView() bool { return i.view.FitView(i.store, i.opts.FitViewOptions) }

// FitViewWith frames the nodes with explicit options.
func (i *Instance) FitViewWith(opts viewport.FitViewOptions) bool {
	return i.view.FitView(i.store, opts)
}

// FitBounds frames a flow rectangle.
func (i *Instance) FitBounds(r geometry.Rect, opts viewport.FitViewOptions) bool {
	return i.view.FitBounds(r, opts)
}

// SetCenter centers the viewport on a flow point. A zoom ≤ 0 keeps the
// current zoom.
func (i *Instance) SetCenter(x, y, zoom float64) bool { return i.view.SetCenter(x, y, zoom) }

// ============================================================================
// Internal Implementation
// ============================================================================

func (i *Instance) wrapHandlers(h interaction.Handlers) interaction.Handlers {
	wrapped := h
	wrapped.OnConnectStart = func(from flow.HandlePoint) {
		i.emit(Event{Kind: EventConnection, Phase: ConnectionStarted, From: from})
		if h.OnConnectStart != nil {
			h.OnConnectStart(from)
		}
	}
	wrapped.OnConnectEnd = func(c flow.Connection, committed bool) {
		i.emit(Event{Kind: EventConnection, Phase: ConnectionEnded, Connection: c, Committed: committed})
		if h.OnConnectEnd != nil {
			h.OnConnectEnd(c, committed)
		}
	}
	return wrapped
}

func (i *Instance) emit(ev Event) {
	for _, l := range slices.Clone(i.listeners) {
		l.fn(ev)
	}
}
