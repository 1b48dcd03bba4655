package interaction

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/observability"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/viewport"
)

// Nodes a, b and c use the default 150x36 size. Handles of a sit at
// (175,100) for the target and (175,136) for the source.
func setup(t *testing.T, opts ...Option) (*flow.Store, *viewport.Model, *Machine) {
	t.Helper()
	s := flow.New()
	s.SetNodes([]flow.Node{
		{ID: "a", Position: geometry.XY{X: 100, Y: 100}},
		{ID: "b", Position: geometry.XY{X: 400, Y: 100}},
		{ID: "c", Position: geometry.XY{X: 100, Y: 300}},
	})
	v := viewport.New()
	v.SetDimensions(800, 600)
	return s, v, New(s, v, opts...)
}

func pt(x, y float64) PointerEvent { return PointerEvent{X: x, Y: y} }

func gesture(m *Machine, points ...PointerEvent) {
	m.PointerDown(points[0])
	for _, p := range points[1:] {
		m.PointerMove(p)
	}
	m.PointerUp(points[len(points)-1])
}

func position(t *testing.T, s *flow.Store, id string) geometry.XY {
	t.Helper()
	n, ok := s.Node(id)
	require.True(t, ok, "node %s missing", id)
	return n.Position
}

func TestClickBelowThresholdSelects(t *testing.T) {
	s, _, m := setup(t)

	m.PointerDown(pt(150, 118))
	assert.Equal(t, PendingDrag, m.State())
	m.PointerMove(pt(150.5, 118))
	assert.Equal(t, PendingDrag, m.State(), "movement within threshold must not drag")
	m.PointerUp(pt(150.5, 118))

	assert.Equal(t, Idle, m.State())
	assert.Equal(t, geometry.XY{X: 100, Y: 100}, position(t, s, "a"))
	sel := s.SelectedNodes()
	require.Len(t, sel, 1)
	assert.Equal(t, "a", sel[0].ID)
}

func TestDragNode(t *testing.T) {
	s, _, m := setup(t)

	m.PointerDown(pt(150, 118))
	m.PointerMove(pt(170, 128))
	assert.Equal(t, DraggingNodes, m.State())
	m.PointerUp(pt(170, 128))

	assert.Equal(t, Idle, m.State())
	assert.Equal(t, geometry.XY{X: 120, Y: 110}, position(t, s, "a"))
	assert.True(t, s.SelectedNodes()[0].ID == "a", "dragged node becomes the selection")
}

func TestDragScalesByZoom(t *testing.T) {
	s, v, m := setup(t)
	v.SetViewport(geometry.Viewport{Zoom: 2})

	gesture(m, pt(250, 236), pt(290, 256))

	assert.Equal(t, geometry.XY{X: 120, Y: 110}, position(t, s, "a"))
}

func TestDragMovesSelection(t *testing.T) {
	s, _, m := setup(t)
	s.SelectNodes([]string{"a", "c"}, false)

	gesture(m, pt(150, 118), pt(160, 138))

	assert.Equal(t, geometry.XY{X: 110, Y: 120}, position(t, s, "a"))
	assert.Equal(t, geometry.XY{X: 110, Y: 320}, position(t, s, "c"))
	assert.Equal(t, geometry.XY{X: 400, Y: 100}, position(t, s, "b"))
}

func TestDragUnselectedReplacesSelection(t *testing.T) {
	s, _, m := setup(t)
	s.SelectNodes([]string{"c"}, false)

	gesture(m, pt(150, 118), pt(160, 118))

	assert.Equal(t, geometry.XY{X: 100, Y: 300}, position(t, s, "c"))
	sel := s.SelectedNodes()
	require.Len(t, sel, 1)
	assert.Equal(t, "a", sel[0].ID)
}

func TestDragChildWithParentMovesOnce(t *testing.T) {
	s, _, m := setup(t)
	s.AddNodes(flow.Node{ID: "kid", ParentID: "a", Position: geometry.XY{X: 10, Y: 10}, Width: 20, Height: 10})
	s.SelectNodes([]string{"a", "kid"}, false)

	gesture(m, pt(200, 130), pt(230, 130))

	assert.Equal(t, geometry.XY{X: 130, Y: 100}, position(t, s, "a"))
	assert.Equal(t, geometry.XY{X: 10, Y: 10}, position(t, s, "kid"), "child keeps its relative position")
}

func TestDragSnapsToGrid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SnapToGrid = true
	s, _, m := setup(t, WithConfig(cfg))

	gesture(m, pt(150, 118), pt(157, 125))

	assert.Equal(t, geometry.XY{X: 105, Y: 105}, position(t, s, "a"))
}

func TestNotDraggableStillSelects(t *testing.T) {
	s, _, m := setup(t)
	s.UpdateNode("a", flow.NodePatch{Draggable: flow.Ptr(false)})

	gesture(m, pt(150, 118), pt(200, 150))

	assert.Equal(t, geometry.XY{X: 100, Y: 100}, position(t, s, "a"))
	require.Len(t, s.SelectedNodes(), 1)
}

func TestEscapeRevertsDrag(t *testing.T) {
	s, _, m := setup(t)

	m.PointerDown(pt(150, 118))
	m.PointerMove(pt(250, 218))
	require.Equal(t, geometry.XY{X: 200, Y: 200}, position(t, s, "a"))

	m.KeyDown(KeyEvent{Key: KeyEscape})

	assert.Equal(t, Idle, m.State())
	assert.Equal(t, geometry.XY{X: 100, Y: 100}, position(t, s, "a"))

	// the trailing pointer up belongs to no gesture
	m.PointerUp(pt(250, 218))
	assert.Equal(t, geometry.XY{X: 100, Y: 100}, position(t, s, "a"))
}

func TestPan(t *testing.T) {
	_, v, m := setup(t)

	gesture(m, pt(600, 400), pt(620, 410), pt(650, 420))

	assert.Equal(t, geometry.Viewport{X: 50, Y: 20, Zoom: 1}, v.Viewport())
}

func TestEscapeRevertsPan(t *testing.T) {
	_, v, m := setup(t)

	m.PointerDown(pt(600, 400))
	m.PointerMove(pt(650, 420))
	m.KeyDown(KeyEvent{Key: KeyEscape})

	assert.Equal(t, geometry.Viewport{Zoom: 1}, v.Viewport())
	assert.Equal(t, Idle, m.State())
}

func TestPanKeepsZoomChangedMidGesture(t *testing.T) {
	_, v, m := setup(t)

	m.PointerDown(pt(600, 400))
	m.PointerMove(pt(620, 410))
	require.True(t, v.ZoomIn())
	zoomed := v.Viewport()
	m.PointerMove(pt(650, 420))

	assert.Equal(t, viewport.ZoomStep, v.Zoom())
	assert.InDelta(t, zoomed.X+30, v.Viewport().X, 1e-9)
	assert.InDelta(t, zoomed.Y+10, v.Viewport().Y, 1e-9)

	m.PointerUp(pt(650, 420))
	assert.Equal(t, viewport.ZoomStep, v.Zoom())
}

func TestWheelIgnoresNonFiniteDelta(t *testing.T) {
	_, v, m := setup(t)

	m.Wheel(WheelEvent{X: 300, Y: 200, DeltaY: math.NaN()})
	m.Wheel(WheelEvent{X: 300, Y: 200, DeltaY: math.Inf(-1)})

	assert.Equal(t, geometry.Viewport{Zoom: 1}, v.Viewport())
}

func TestPaneClickClearsSelection(t *testing.T) {
	var clicked *geometry.XY
	s, _, m := setup(t, WithHandlers(Handlers{
		OnPaneClick: func(p geometry.XY) { clicked = &p },
	}))
	s.SelectAll()

	gesture(m, pt(700, 500))

	assert.Empty(t, s.SelectedNodes())
	require.NotNil(t, clicked)
	assert.Equal(t, geometry.XY{X: 700, Y: 500}, *clicked)
}

func boxStore() *flow.Store {
	s := flow.New()
	s.SetNodes([]flow.Node{
		{ID: "inside", Position: geometry.XY{X: 20, Y: 20}, Width: 50, Height: 50},
		{ID: "partial", Position: geometry.XY{X: 180, Y: 20}, Width: 50, Height: 50},
		{ID: "outside", Position: geometry.XY{X: 300, Y: 300}, Width: 50, Height: 50},
	})
	s.SetEdges([]flow.Edge{
		{ID: "e1", Source: "inside", Target: "outside"},
		{ID: "e2", Source: "partial", Target: "outside"},
	})
	return s
}

func selectedIDs(s *flow.Store) []string {
	var ids []string
	for _, n := range s.SelectedNodes() {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestSelectionBoxFullMode(t *testing.T) {
	s := boxStore()
	v := viewport.New()
	v.SetDimensions(800, 600)
	cfg := DefaultConfig()
	cfg.SelectionMode = SelectionFull
	m := New(s, v, WithConfig(cfg))

	down := pt(10, 10)
	down.Shift = true
	m.PointerDown(down)
	assert.Equal(t, SelectingBox, m.State())
	m.PointerMove(pt(200, 150))

	box, ok := m.SelectionBox()
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, Width: 190, Height: 140}, box)
	m.PointerUp(pt(200, 150))

	assert.Equal(t, []string{"inside"}, selectedIDs(s))
	edges := s.SelectedEdges()
	require.Len(t, edges, 1)
	assert.Equal(t, "e1", edges[0].ID)
	_, ok = m.SelectionBox()
	assert.False(t, ok)
}

func TestSelectionBoxPartialMode(t *testing.T) {
	s := boxStore()
	v := viewport.New()
	v.SetDimensions(800, 600)
	cfg := DefaultConfig()
	cfg.SelectionOnDrag = true
	m := New(s, v, WithConfig(cfg))

	gesture(m, pt(10, 10), pt(200, 150))

	assert.Equal(t, []string{"inside", "partial"}, selectedIDs(s))
	assert.Len(t, s.SelectedEdges(), 2)
}

// With the viewport at {X:-50, Y:20, Zoom:2} the nodes of boxStore sit on
// screen at inside (-10,60)-(90,160), partial (310,60)-(410,160) and
// outside (550,620)-(650,720).
func TestSelectionBoxFullModeTransformed(t *testing.T) {
	s := boxStore()
	v := viewport.New()
	v.SetDimensions(800, 600)
	v.SetViewport(geometry.Viewport{X: -50, Y: 20, Zoom: 2})
	cfg := DefaultConfig()
	cfg.SelectionMode = SelectionFull
	cfg.SelectionOnDrag = true
	m := New(s, v, WithConfig(cfg))

	gesture(m, pt(100, 50), pt(420, 170))

	assert.Equal(t, []string{"partial"}, selectedIDs(s))
	edges := s.SelectedEdges()
	require.Len(t, edges, 1)
	assert.Equal(t, "e2", edges[0].ID)
}

func TestSelectionBoxPartialModeTransformed(t *testing.T) {
	s := boxStore()
	v := viewport.New()
	v.SetDimensions(800, 600)
	v.SetViewport(geometry.Viewport{X: -50, Y: 20, Zoom: 2})
	cfg := DefaultConfig()
	cfg.SelectionOnDrag = true
	m := New(s, v, WithConfig(cfg))

	m.PointerDown(pt(80, 50))
	m.PointerMove(pt(320, 100))
	box, ok := m.SelectionBox()
	require.True(t, ok)
	assert.Equal(t, geometry.Rect{X: 80, Y: 50, Width: 240, Height: 50}, box)
	m.PointerUp(pt(320, 100))

	assert.Equal(t, []string{"inside", "partial"}, selectedIDs(s))
	assert.Len(t, s.SelectedEdges(), 2)
}

func TestSelectionBoxEscapeRestores(t *testing.T) {
	s := boxStore()
	v := viewport.New()
	v.SetDimensions(800, 600)
	m := New(s, v)
	s.SelectNodes([]string{"outside"}, false)

	down := pt(10, 10)
	down.Shift = true
	m.PointerDown(down)
	m.PointerMove(pt(200, 150))
	require.Equal(t, []string{"inside", "partial"}, selectedIDs(s))

	m.KeyDown(KeyEvent{Key: KeyEscape})

	assert.Equal(t, []string{"outside"}, selectedIDs(s))
}

func TestConnectCommits(t *testing.T) {
	var connected []flow.Connection
	s, _, m := setup(t, WithHandlers(Handlers{
		OnConnect: func(c flow.Connection) { connected = append(connected, c) },
	}))

	m.PointerDown(pt(175, 136))
	require.Equal(t, Connecting, m.State())
	m.PointerMove(pt(470, 104))

	cs, ok := m.Connection()
	require.True(t, ok)
	assert.True(t, cs.Valid)
	assert.Equal(t, "b", cs.To.NodeID)

	m.PointerUp(pt(470, 104))

	assert.Equal(t, Idle, m.State())
	e, ok := s.Edge("xy-edge__a-b")
	require.True(t, ok)
	assert.Equal(t, "a", e.Source)
	assert.Equal(t, "b", e.Target)
	assert.Len(t, connected, 1)
}

func TestConnectReleasedAwayIsDiscarded(t *testing.T) {
	var ended, committed int
	s, _, m := setup(t, WithHandlers(Handlers{
		OnConnectEnd: func(_ flow.Connection, ok bool) {
			ended++
			if ok {
				committed++
			}
		},
	}))

	gesture(m, pt(175, 136), pt(300, 250))

	assert.Equal(t, 0, s.EdgeCount())
	assert.Equal(t, 1, ended)
	assert.Equal(t, 0, committed)
}

func TestConnectRejectsSelfLoop(t *testing.T) {
	s, _, m := setup(t)

	gesture(m, pt(175, 136), pt(175, 102))

	assert.Equal(t, 0, s.EdgeCount())
}

func TestConnectionModes(t *testing.T) {
	s, _, m := setup(t)
	gesture(m, pt(175, 136), pt(475, 136))
	assert.Equal(t, 0, s.EdgeCount(), "strict mode joins source to target only")

	cfg := DefaultConfig()
	cfg.ConnectionMode = ConnectionLoose
	s, _, m = setup(t, WithConfig(cfg))
	gesture(m, pt(175, 136), pt(475, 136))
	assert.Equal(t, 1, s.EdgeCount())
}

func TestConnectFromTargetReverses(t *testing.T) {
	s, _, m := setup(t)

	gesture(m, pt(475, 100), pt(176, 135))

	e, ok := s.Edge("xy-edge__a-b")
	require.True(t, ok)
	assert.Equal(t, "a", e.Source)
}

func TestIsValidConnectionVeto(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IsValidConnection = func(c flow.Connection) bool { return c.Target != "b" }
	s, _, m := setup(t, WithConfig(cfg))

	gesture(m, pt(175, 136), pt(475, 100))

	assert.Equal(t, 0, s.EdgeCount())
}

func TestNotConnectableNodeStartsNoConnection(t *testing.T) {
	s, _, m := setup(t)
	s.UpdateNode("a", flow.NodePatch{Connectable: flow.Ptr(false)})

	m.PointerDown(pt(175, 135))
	assert.NotEqual(t, Connecting, m.State())
	m.PointerUp(pt(175, 135))
}

func TestPointerCancelDiscardsConnection(t *testing.T) {
	s, _, m := setup(t)

	m.PointerDown(pt(175, 136))
	m.PointerMove(pt(475, 100))
	m.PointerCancel(pt(475, 100))

	assert.Equal(t, Idle, m.State())
	assert.Equal(t, 0, s.EdgeCount())
}

func TestExplicitTargets(t *testing.T) {
	s, _, m := setup(t)
	s.AddEdges(flow.Edge{ID: "ab", Source: "a", Target: "b"})

	m.PointerDown(PointerEvent{X: 5, Y: 5, Target: Target{Kind: TargetEdge, EdgeID: "ab"}})
	m.PointerUp(pt(5, 5))

	edges := s.SelectedEdges()
	require.Len(t, edges, 1)
	assert.Equal(t, "ab", edges[0].ID)
}

func TestDeleteKey(t *testing.T) {
	s, _, m := setup(t)
	s.AddEdges(flow.Edge{ID: "ab", Source: "a", Target: "b"})
	s.SelectNodes([]string{"b"}, false)

	m.KeyDown(KeyEvent{Key: KeyBackspace})

	assert.Equal(t, 2, s.NodeCount())
	assert.Equal(t, 0, s.EdgeCount())

	m.KeyDown(KeyEvent{Key: KeyDelete})
	assert.Equal(t, 2, s.NodeCount(), "nothing selected, nothing deleted")
}

func TestArrowNudge(t *testing.T) {
	s, _, m := setup(t)
	s.SelectNodes([]string{"a"}, false)

	m.KeyDown(KeyEvent{Key: KeyArrowRight})
	m.KeyDown(KeyEvent{Key: KeyArrowDown, Modifiers: Modifiers{Shift: true}})

	assert.Equal(t, geometry.XY{X: 105, Y: 120}, position(t, s, "a"))
}

func TestWheelZoomKeepsPointer(t *testing.T) {
	_, v, m := setup(t)
	p := geometry.XY{X: 300, Y: 200}
	before := v.ScreenToFlowPosition(p)

	m.Wheel(WheelEvent{X: p.X, Y: p.Y, DeltaY: -100})

	assert.InDelta(t, math.Pow(2, 0.2), v.Zoom(), 1e-12)
	after := v.ScreenToFlowPosition(p)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestWheelPans(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PanOnScroll = true
	_, v, m := setup(t, WithConfig(cfg))

	m.Wheel(WheelEvent{DeltaX: 10, DeltaY: 30})

	assert.Equal(t, geometry.Viewport{X: -10, Y: -30, Zoom: 1}, v.Viewport())
}

func TestDoubleClickZooms(t *testing.T) {
	_, v, m := setup(t)

	m.DoubleClick(pt(700, 500))
	assert.Equal(t, 2.0, v.Zoom())
	assert.Equal(t, geometry.XY{X: 700, Y: 500}, v.FlowToScreenPosition(geometry.XY{X: 700, Y: 500}))

	v.SetViewport(geometry.Viewport{Zoom: 1})
	m.DoubleClick(pt(150, 118))
	assert.Equal(t, 1.0, v.Zoom(), "double click on a node does not zoom")
}

func TestCallbacks(t *testing.T) {
	var starts, drags, stops, selChanges int
	_, _, m := setup(t, WithHandlers(Handlers{
		OnNodeDragStart:   func([]flow.Node) { starts++ },
		OnNodeDrag:        func([]flow.Node) { drags++ },
		OnNodeDragStop:    func([]flow.Node) { stops++ },
		OnSelectionChange: func([]flow.Node, []flow.Edge) { selChanges++ },
	}))

	gesture(m, pt(150, 118), pt(160, 118), pt(170, 118))

	assert.Equal(t, 1, starts)
	assert.Equal(t, 2, drags)
	assert.Equal(t, 1, stops)
	assert.Equal(t, 1, selChanges)
}

type recordingHooks struct {
	observability.NoopInteractionHooks
	started map[string]int
	ended   map[string]bool
	dur     time.Duration
}

func (r *recordingHooks) OnGestureStart(kind string) { r.started[kind]++ }

func (r *recordingHooks) OnGestureEnd(kind string, committed bool, d time.Duration) {
	r.ended[kind] = committed
	r.dur = d
}

func TestGestureHooks(t *testing.T) {
	defer observability.Reset()
	hooks := &recordingHooks{started: map[string]int{}, ended: map[string]bool{}}
	observability.SetInteractionHooks(hooks)

	clock := time.Unix(0, 0)
	_, _, m := setup(t, WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))

	gesture(m, pt(150, 118), pt(170, 118))
	// a moved 20 to the right, so its source handle is now at (195,136)
	m.PointerDown(pt(195, 136))
	m.PointerMove(pt(300, 300))
	m.KeyDown(KeyEvent{Key: KeyEscape})

	assert.Equal(t, 1, hooks.started["drag"])
	assert.True(t, hooks.ended["drag"])
	assert.Equal(t, 1, hooks.started["connect"])
	assert.False(t, hooks.ended["connect"])
	assert.Equal(t, time.Second, hooks.dur)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "dragging", DraggingNodes.String())
	assert.Equal(t, "State(42)", State(42).String())
}
