// Package interaction turns pointer, wheel and key input into store and
// viewport mutations.
//
// A [Machine] is a single state machine over the gestures a flow canvas
// supports: panning the pane, drawing a selection box, dragging nodes and
// dragging a connection out of a handle. It replaces per-element event
// handlers with one reducer fed by the rendering adapter:
//
//	m := interaction.New(store, view)
//	m.PointerDown(interaction.PointerEvent{X: 120, Y: 40})
//	m.PointerMove(interaction.PointerEvent{X: 180, Y: 90})
//	m.PointerUp(interaction.PointerEvent{X: 180, Y: 90})
//
// Events carry container-relative screen coordinates. Adapters that know what
// was hit set [PointerEvent.Target]; otherwise the machine hit-tests handles
// and then nodes from the store lookup, topmost first.
//
// Gesture state always resets on PointerUp and PointerCancel, wherever they
// happen, so adapters should forward document-level pointer events while a
// gesture is active. Escape cancels a gesture and reverts what it changed.
//
// A Machine is not safe for concurrent use.
package interaction

import (
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/observability"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/viewport"
)

// State is the gesture the machine is in.
type State int

const (
	Idle State = iota
	Panning
	SelectingBox
	PendingDrag
	DraggingNodes
	Connecting
)

var stateNames = [...]string{"idle", "panning", "selecting", "pending-drag", "dragging", "connecting"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Gesture kinds reported to observability hooks.
const (
	gesturePan     = "pan"
	gestureDrag    = "drag"
	gestureSelect  = "select"
	gestureConnect = "connect"
)

// ConnectionState describes a connection being dragged.
type ConnectionState struct {
	From flow.HandlePoint
	// Pointer is the pointer position in flow coordinates.
	Pointer geometry.XY
	// To is the handle the connection would end on. Only meaningful when
	// Valid is true.
	To    flow.HandlePoint
	Valid bool
}

// Option configures a [Machine].
type Option func(*Machine)

// WithConfig replaces the default gesture settings.
func WithConfig(cfg Config) Option {
	return func(m *Machine) { m.cfg = cfg }
}

// WithHandlers sets the gesture callbacks.
func WithHandlers(h Handlers) Option {
	return func(m *Machine) { m.h = h }
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock replaces time.Now for gesture durations.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

type dragItem struct {
	id  string
	rel geometry.XY
	abs geometry.XY
}

// Machine is the interaction state machine.
type Machine struct {
	store  *flow.Store
	view   *viewport.Model
	cfg    Config
	h      Handlers
	logger *log.Logger
	now    func() time.Time

	state       State
	start       geometry.XY
	mods        Modifiers
	moved       bool
	startedAt   time.Time
	panePressed bool

	pressNode string
	drag      []dragItem
	panFrom   geometry.Viewport
	panLast   geometry.XY

	box          geometry.Rect
	boxPrevNodes []string
	boxPrevEdges []string

	conn ConnectionState
}

// New returns an idle machine driving store and view.
func New(store *flow.Store, view *viewport.Model, opts ...Option) *Machine {
	m := &Machine{
		store:  store,
		view:   view,
		cfg:    DefaultConfig(),
		logger: log.New(io.Discard),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current gesture state.
func (m *Machine) State() State { return m.state }

// Config returns the gesture settings.
func (m *Machine) Config() Config { return m.cfg }

// SetConfig replaces the gesture settings. It takes effect on the next event.
func (m *Machine) SetConfig(cfg Config) { m.cfg = cfg }

// SetHandlers replaces the gesture callbacks.
func (m *Machine) SetHandlers(h Handlers) { m.h = h }

// SelectionBox returns the selection box in screen coordinates while one is
// being drawn.
func (m *Machine) SelectionBox() (geometry.Rect, bool) {
	return m.box, m.state == SelectingBox && m.moved
}

// Connection returns the connection being dragged.
func (m *Machine) Connection() (ConnectionState, bool) {
	return m.conn, m.state == Connecting
}

// ============================================================================
// Pointer input
// ============================================================================

// PointerDown starts a gesture. It is ignored while another gesture is active.
func (m *Machine) PointerDown(ev PointerEvent) {
	if m.state != Idle {
		return
	}
	m.start, m.mods, m.moved = ev.point(), ev.Modifiers, false
	m.startedAt = m.now()

	switch ev.Button {
	case ButtonSecondary:
		return
	case ButtonMiddle:
		if m.cfg.PanOnDrag {
			m.beginPan()
		}
		return
	}

	t := m.resolve(ev)
	switch t.Kind {
	case TargetHandle:
		m.beginConnection(t)
	case TargetNode:
		m.pressNode = t.NodeID
		m.state = PendingDrag
	case TargetEdge:
		m.clickEdge(t.EdgeID, ev.Modifiers)
	default:
		m.panePressed = true
		switch {
		case ev.Shift || m.cfg.SelectionOnDrag:
			m.beginBox()
		case m.cfg.PanOnDrag:
			m.beginPan()
		}
	}
}

// PointerMove advances the active gesture.
func (m *Machine) PointerMove(ev PointerEvent) {
	p := ev.point()
	switch m.state {
	case PendingDrag:
		if geometry.Distance(p, m.start) <= m.cfg.NodeDragThreshold {
			return
		}
		if m.beginDrag() {
			m.moveDrag(p)
		}
	case DraggingNodes:
		m.moveDrag(p)
	case Panning:
		if !m.moved {
			if p == m.start {
				return
			}
			m.moved = true
			observability.Interaction().OnGestureStart(gesturePan)
		}
		d := p.Sub(m.panLast)
		m.panLast = p
		m.view.PanBy(d.X, d.Y)
	case SelectingBox:
		if !m.moved {
			if p == m.start {
				return
			}
			m.moved = true
			observability.Interaction().OnGestureStart(gestureSelect)
		}
		m.box = rectFromPoints(m.start, p)
		m.updateBoxSelection()
	case Connecting:
		m.updateConnection(ev)
	}
}

// PointerUp finishes the active gesture.
func (m *Machine) PointerUp(ev PointerEvent) {
	switch m.state {
	case PendingDrag:
		m.clickNode(m.pressNode, m.mods)
	case DraggingNodes:
		m.endDrag(true)
	case Panning:
		if m.moved {
			m.endGesture(gesturePan, true)
		} else {
			m.clickPane(ev.point())
		}
	case SelectingBox:
		if m.moved {
			m.endGesture(gestureSelect, true)
		} else {
			m.clickPane(ev.point())
		}
	case Connecting:
		m.updateConnection(ev)
		m.endConnection(m.conn.Valid)
	case Idle:
		if m.panePressed {
			m.clickPane(ev.point())
		}
	}
	m.reset()
}

// PointerCancel ends the active gesture without committing a connection.
// Moves already applied by a drag or pan stay.
func (m *Machine) PointerCancel(PointerEvent) {
	switch m.state {
	case DraggingNodes:
		m.endDrag(false)
	case Panning, SelectingBox:
		if m.moved {
			kind := gesturePan
			if m.state == SelectingBox {
				kind = gestureSelect
			}
			m.endGesture(kind, false)
		}
	case Connecting:
		m.endConnection(false)
	}
	m.reset()
}

// Cancel aborts the active gesture and reverts its effects: dragged nodes
// return to their start positions, a pan restores the viewport, a selection
// box restores the previous selection and a connection is discarded.
func (m *Machine) Cancel() {
	switch m.state {
	case DraggingNodes:
		positions := make(map[string]geometry.XY, len(m.drag))
		for _, d := range m.drag {
			positions[d.id] = d.rel
		}
		m.store.SetNodePositions(positions)
		m.endDrag(false)
	case Panning:
		m.view.SetViewport(m.panFrom)
		if m.moved {
			m.endGesture(gesturePan, false)
		}
	case SelectingBox:
		if m.moved {
			m.selecting(func() { m.store.SetSelection(m.boxPrevNodes, m.boxPrevEdges) })
			m.endGesture(gestureSelect, false)
		}
	case Connecting:
		m.endConnection(false)
	}
	m.reset()
}

// Reset drops gesture state without callbacks or reverts. Use it on teardown.
func (m *Machine) Reset() { m.reset() }

func (m *Machine) reset() {
	m.state = Idle
	m.moved = false
	m.panePressed = false
	m.pressNode = ""
	m.drag = nil
	m.box = geometry.Rect{}
	m.boxPrevNodes, m.boxPrevEdges = nil, nil
	m.conn = ConnectionState{}
}

func (m *Machine) endGesture(kind string, committed bool) {
	d := m.now().Sub(m.startedAt)
	m.logger.Debug("gesture finished", "kind", kind, "committed", committed, "duration", d)
	observability.Interaction().OnGestureEnd(kind, committed, d)
}

// ============================================================================
// Wheel, double click and keys
// ============================================================================

// Wheel zooms around the pointer, or pans when PanOnScroll is set and Ctrl is
// not held.
func (m *Machine) Wheel(ev WheelEvent) {
	if m.state == Panning || m.state == DraggingNodes {
		return
	}
	if m.cfg.PanOnScroll && !ev.Ctrl {
		dx, dy := -ev.DeltaX, -ev.DeltaY
		if ev.Shift {
			dx, dy = dy, dx
		}
		m.view.PanBy(dx, dy)
		return
	}
	if !m.cfg.ZoomOnScroll && !ev.Ctrl {
		return
	}
	factor := math.Pow(2, -ev.DeltaY*WheelZoomSpeed)
	if m.view.ScaleBy(geometry.XY{X: ev.X, Y: ev.Y}, factor) {
		observability.Interaction().OnZoom(m.view.Zoom())
	}
}

// DoubleClick zooms in at the pointer when it lands on the pane.
func (m *Machine) DoubleClick(ev PointerEvent) {
	if !m.cfg.ZoomOnDoubleClick || m.resolve(ev).Kind != TargetPane {
		return
	}
	if m.view.ScaleBy(ev.point(), DoubleClickZoomFactor) {
		observability.Interaction().OnZoom(m.view.Zoom())
	}
}

// KeyDown handles Escape, deletion and arrow-key nudging.
func (m *Machine) KeyDown(ev KeyEvent) {
	switch ev.Key {
	case KeyEscape:
		m.Cancel()
	case KeyDelete, KeyBackspace:
		if m.state == Idle {
			m.deleteSelection()
		}
	case KeyArrowUp, KeyArrowDown, KeyArrowLeft, KeyArrowRight:
		if m.state == Idle {
			m.nudge(ev)
		}
	}
}

func (m *Machine) deleteSelection() {
	var nodeIDs, edgeIDs []string
	for _, n := range m.store.SelectedNodes() {
		nodeIDs = append(nodeIDs, n.ID)
	}
	for _, e := range m.store.SelectedEdges() {
		edgeIDs = append(edgeIDs, e.ID)
	}
	if len(nodeIDs) == 0 && len(edgeIDs) == 0 {
		return
	}
	m.selecting(func() { m.store.DeleteElements(nodeIDs, edgeIDs) })
}

func (m *Machine) nudge(ev KeyEvent) {
	step := m.cfg.NudgeStep
	if ev.Shift {
		step = m.cfg.NudgeStepLarge
	}
	var dir geometry.XY
	switch ev.Key {
	case KeyArrowUp:
		dir.Y = -1
	case KeyArrowDown:
		dir.Y = 1
	case KeyArrowLeft:
		dir.X = -1
	case KeyArrowRight:
		dir.X = 1
	}

	set := map[string]bool{}
	for _, n := range m.store.SelectedNodes() {
		if m.cfg.NodesDraggable && n.IsDraggable() {
			set[n.ID] = true
		}
	}
	deltas := make(map[string]geometry.XY, len(set))
	for id := range set {
		if !m.ancestorIn(id, set) {
			deltas[id] = dir.Scale(step)
		}
	}
	if len(deltas) > 0 {
		m.store.TranslateNodes(deltas)
	}
}

// ============================================================================
// Clicks and selection
// ============================================================================

func (m *Machine) clickNode(id string, mods Modifiers) {
	n, ok := m.store.Node(id)
	if !ok {
		return
	}
	if m.cfg.ElementsSelectable && n.IsSelectable() {
		if mods.multi() && n.Selected {
			m.selecting(func() { m.store.UnselectNodes(id) })
		} else {
			m.selecting(func() { m.store.SelectNodes([]string{id}, mods.multi()) })
		}
	}
	if m.h.OnNodeClick != nil {
		n, _ = m.store.Node(id)
		m.h.OnNodeClick(n)
	}
}

func (m *Machine) clickEdge(id string, mods Modifiers) {
	e, ok := m.store.Edge(id)
	if !ok {
		return
	}
	if m.cfg.ElementsSelectable {
		if mods.multi() && e.Selected {
			m.selecting(func() { m.store.UnselectEdges(id) })
		} else {
			m.selecting(func() { m.store.SelectEdges([]string{id}, mods.multi()) })
		}
	}
	if m.h.OnEdgeClick != nil {
		e, _ = m.store.Edge(id)
		m.h.OnEdgeClick(e)
	}
}

func (m *Machine) clickPane(p geometry.XY) {
	if m.cfg.ElementsSelectable {
		m.selecting(m.store.UnselectAll)
	}
	if m.h.OnPaneClick != nil {
		m.h.OnPaneClick(m.view.ScreenToFlowPosition(p))
	}
}

func (m *Machine) selectedIDs() (nodes, edges []string) {
	for _, n := range m.store.SelectedNodes() {
		nodes = append(nodes, n.ID)
	}
	for _, e := range m.store.SelectedEdges() {
		edges = append(edges, e.ID)
	}
	return nodes, edges
}

// selecting runs fn and reports a selection change if fn caused one.
func (m *Machine) selecting(fn func()) {
	if m.h.OnSelectionChange == nil {
		fn()
		return
	}
	beforeNodes, beforeEdges := m.selectedIDs()
	fn()
	afterNodes, afterEdges := m.selectedIDs()
	if slices.Equal(beforeNodes, afterNodes) && slices.Equal(beforeEdges, afterEdges) {
		return
	}
	m.h.OnSelectionChange(m.store.SelectedNodes(), m.store.SelectedEdges())
}

// ============================================================================
// Selection box
// ============================================================================

func (m *Machine) beginBox() {
	m.state = SelectingBox
	m.box = geometry.Rect{X: m.start.X, Y: m.start.Y}
	m.boxPrevNodes, m.boxPrevEdges = m.selectedIDs()
}

func rectFromPoints(a, b geometry.XY) geometry.Rect {
	return geometry.Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(a.X - b.X),
		Height: math.Abs(a.Y - b.Y),
	}
}

// updateBoxSelection selects the nodes the box picks, compared against their
// screen-projected boxes, and the edges connected to them.
func (m *Machine) updateBoxSelection() {
	if !m.cfg.ElementsSelectable {
		return
	}
	vp := m.view.Viewport()
	var nodeIDs []string
	for _, in := range m.store.InternalNodes() {
		if in.Node.Hidden || !in.Node.IsSelectable() {
			continue
		}
		r := geometry.RectToScreen(in.Rect(), vp)
		hit := m.box.Intersects(r)
		if m.cfg.SelectionMode == SelectionFull {
			hit = m.box.ContainsRect(r)
		}
		if hit {
			nodeIDs = append(nodeIDs, in.Node.ID)
		}
	}
	var edgeIDs []string
	if len(nodeIDs) > 0 {
		for _, e := range m.store.ConnectedEdges(nodeIDs...) {
			edgeIDs = append(edgeIDs, e.ID)
		}
	}
	m.selecting(func() { m.store.SetSelection(nodeIDs, edgeIDs) })
}

// ============================================================================
// Panning and dragging
// ============================================================================

func (m *Machine) beginPan() {
	m.state = Panning
	m.panFrom = m.view.Viewport()
	m.panLast = m.start
}

// beginDrag builds the drag set for the pressed node. It reports false when
// the node cannot be dragged.
func (m *Machine) beginDrag() bool {
	n, ok := m.store.Node(m.pressNode)
	if !ok || !m.cfg.NodesDraggable || !n.IsDraggable() {
		return false
	}
	if !n.Selected && m.cfg.ElementsSelectable && n.IsSelectable() {
		m.selecting(func() { m.store.SelectNodes([]string{n.ID}, m.mods.multi()) })
		n, _ = m.store.Node(n.ID)
	}

	set := map[string]bool{n.ID: true}
	if n.Selected {
		for _, s := range m.store.SelectedNodes() {
			if s.IsDraggable() {
				set[s.ID] = true
			}
		}
	}

	m.drag = m.drag[:0]
	for _, in := range m.store.InternalNodes() {
		id := in.Node.ID
		if !set[id] || m.ancestorIn(id, set) {
			continue
		}
		m.drag = append(m.drag, dragItem{id: id, rel: in.Node.Position, abs: in.Internals.PositionAbsolute})
	}
	m.state = DraggingNodes
	m.logger.Debug("drag started", "nodes", len(m.drag))
	observability.Interaction().OnGestureStart(gestureDrag)
	if m.h.OnNodeDragStart != nil {
		m.h.OnNodeDragStart(m.dragNodes())
	}
	return true
}

// ancestorIn reports whether any ancestor of id is in set. A node moves with
// its parent, so dragging both would move it twice.
func (m *Machine) ancestorIn(id string, set map[string]bool) bool {
	n, ok := m.store.Node(id)
	for depth := 0; ok && n.ParentID != "" && depth < m.store.NodeCount(); depth++ {
		if set[n.ParentID] {
			return true
		}
		n, ok = m.store.Node(n.ParentID)
	}
	return false
}

func (m *Machine) moveDrag(p geometry.XY) {
	delta := p.Sub(m.start).Scale(1 / m.view.Zoom())
	positions := make(map[string]geometry.XY, len(m.drag))
	for _, d := range m.drag {
		abs := d.abs.Add(delta)
		if m.cfg.SnapToGrid {
			abs = geometry.SnapPosition(abs, m.cfg.SnapGrid)
		}
		positions[d.id] = d.rel.Add(abs.Sub(d.abs))
	}
	m.store.SetNodePositions(positions)
	if m.h.OnNodeDrag != nil {
		m.h.OnNodeDrag(m.dragNodes())
	}
}

func (m *Machine) endDrag(committed bool) {
	m.endGesture(gestureDrag, committed)
	if m.h.OnNodeDragStop != nil {
		m.h.OnNodeDragStop(m.dragNodes())
	}
}

// dragNodes returns the current state of the dragged nodes that still exist.
func (m *Machine) dragNodes() []flow.Node {
	out := make([]flow.Node, 0, len(m.drag))
	for _, d := range m.drag {
		if n, ok := m.store.Node(d.id); ok {
			out = append(out, n)
		}
	}
	return out
}

// ============================================================================
// Connections
// ============================================================================

func (m *Machine) beginConnection(t Target) {
	if !m.cfg.NodesConnectable {
		return
	}
	n, ok := m.store.Node(t.NodeID)
	if !ok || !n.IsConnectable() {
		return
	}
	h, ok := m.store.GetHandlePosition(t.NodeID, t.HandleType, t.HandleID)
	if !ok {
		return
	}
	m.conn = ConnectionState{From: h, Pointer: h.XY()}
	m.state = Connecting
	observability.Interaction().OnGestureStart(gestureConnect)
	if m.h.OnConnectStart != nil {
		m.h.OnConnectStart(h)
	}
}

// updateConnection moves the connection end and snaps it to the closest valid
// handle within ConnectionRadius. A handle named by the event target wins.
func (m *Machine) updateConnection(ev PointerEvent) {
	fp := m.view.ScreenToFlowPosition(ev.point())
	m.conn.Pointer = fp
	m.conn.To, m.conn.Valid = flow.HandlePoint{}, false

	if t := ev.Target; t.Kind == TargetHandle {
		if h, ok := m.store.GetHandlePosition(t.NodeID, t.HandleType, t.HandleID); ok && m.validTarget(h) {
			m.conn.To, m.conn.Valid = h, true
			return
		}
	}

	radius := m.cfg.ConnectionRadius / m.view.Zoom()
	best := math.Inf(1)
	for _, in := range m.store.InternalNodes() {
		if in.Node.Hidden {
			continue
		}
		for _, h := range m.store.Handles(in.Node.ID) {
			d := geometry.Distance(fp, h.XY())
			if d > radius || d >= best || !m.validTarget(h) {
				continue
			}
			best = d
			m.conn.To, m.conn.Valid = h, true
		}
	}
}

// validTarget reports whether the connection may end on h.
func (m *Machine) validTarget(h flow.HandlePoint) bool {
	from := m.conn.From
	if h.NodeID == from.NodeID {
		return false
	}
	if m.cfg.ConnectionMode != ConnectionLoose && h.Type == from.Type {
		return false
	}
	n, ok := m.store.Node(h.NodeID)
	if !ok || !n.IsConnectable() {
		return false
	}
	if m.cfg.IsValidConnection != nil && !m.cfg.IsValidConnection(m.connectionTo(h)) {
		return false
	}
	return true
}

// connectionTo orients a connection ending on h. Starting from a target
// handle reverses it so the edge always runs source to target.
func (m *Machine) connectionTo(h flow.HandlePoint) flow.Connection {
	from := m.conn.From
	if from.Type == flow.HandleTarget && h.Type == flow.HandleSource {
		return flow.Connection{Source: h.NodeID, SourceHandle: h.HandleID, Target: from.NodeID, TargetHandle: from.HandleID}
	}
	return flow.Connection{Source: from.NodeID, SourceHandle: from.HandleID, Target: h.NodeID, TargetHandle: h.HandleID}
}

func (m *Machine) endConnection(commit bool) {
	var c flow.Connection
	committed := false
	if m.conn.Valid {
		c = m.connectionTo(m.conn.To)
		if commit {
			if _, ok := m.store.AddEdge(c); ok {
				committed = true
				if m.h.OnConnect != nil {
					m.h.OnConnect(c)
				}
			}
		}
	}
	m.endGesture(gestureConnect, committed)
	if m.h.OnConnectEnd != nil {
		m.h.OnConnectEnd(c, committed)
	}
}

// ============================================================================
// Hit testing
// ============================================================================

// resolve returns the event target, hit-testing when the adapter left it
// unset. Handles win over nodes; among nodes the highest Z wins and later
// nodes win ties.
func (m *Machine) resolve(ev PointerEvent) Target {
	if ev.Target.Kind != TargetAuto {
		return ev.Target
	}
	fp := m.view.ScreenToFlowPosition(ev.point())
	nodes := m.store.InternalNodes()

	if m.cfg.NodesConnectable {
		radius := m.cfg.HandleRadius / m.view.Zoom()
		best := math.Inf(1)
		var hit flow.HandlePoint
		for _, in := range nodes {
			if in.Node.Hidden || !in.Node.IsConnectable() {
				continue
			}
			for _, h := range m.store.Handles(in.Node.ID) {
				if d := geometry.Distance(fp, h.XY()); d <= radius && d < best {
					best, hit = d, h
				}
			}
		}
		if !math.IsInf(best, 1) {
			return Target{Kind: TargetHandle, NodeID: hit.NodeID, HandleID: hit.HandleID, HandleType: hit.Type}
		}
	}

	top := -1
	for i, in := range nodes {
		if in.Node.Hidden || !in.Rect().ContainsPoint(fp) {
			continue
		}
		if top < 0 || in.Internals.Z >= nodes[top].Internals.Z {
			top = i
		}
	}
	if top >= 0 {
		return Target{Kind: TargetNode, NodeID: nodes[top].Node.ID}
	}
	return Target{Kind: TargetPane}
}
