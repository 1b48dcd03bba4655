package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/interaction"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/viewport"
)

func twoNodeDocument() graph.Document {
	return graph.Document{
		Nodes: []flow.Node{
			{ID: "1", Position: geometry.XY{X: 250, Y: 5}, Data: map[string]any{"label": "Input"}},
			{ID: "2", Position: geometry.XY{X: 100, Y: 100}},
		},
		Edges: []flow.Edge{{ID: "e1-2", Source: "1", Target: "2"}},
	}
}

func record(inst *Instance) (*[]Event, func()) {
	var events []Event
	unsub := inst.Subscribe(func(ev Event) { events = append(events, ev) })
	return &events, unsub
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestSubscribeEvents(t *testing.T) {
	inst := New(DefaultOptions())
	events, unsub := record(inst)

	inst.SetNodes(twoNodeDocument().Nodes)
	inst.SetEdges(twoNodeDocument().Edges)
	inst.Store().SelectNodes([]string{"1"}, false)
	inst.SetViewport(geometry.Viewport{X: 10, Y: 20, Zoom: 1.5})

	require.Equal(t, []EventKind{EventNodes, EventEdges, EventSelection, EventViewport}, kinds(*events))
	vp := (*events)[3]
	assert.Equal(t, geometry.Viewport{Zoom: 1}, vp.Previous)
	assert.Equal(t, geometry.Viewport{X: 10, Y: 20, Zoom: 1.5}, vp.Viewport)

	unsub()
	inst.PanBy(5, 5)
	assert.Len(t, *events, 4)
}

func TestNoEventWithoutChange(t *testing.T) {
	inst := New(DefaultOptions())
	inst.FromObject(twoNodeDocument())
	events, _ := record(inst)

	assert.False(t, inst.UpdateNode("missing", flow.NodePatch{Hidden: flow.Ptr(true)}))
	assert.False(t, inst.SetViewport(inst.Viewport()))
	inst.DeleteElements([]string{"ghost"}, nil)

	assert.Empty(t, *events)
}

func TestUpdateNodeFuncKeepsUnpatchedFields(t *testing.T) {
	inst := New(DefaultOptions())
	inst.FromObject(twoNodeDocument())

	require.True(t, inst.UpdateNodeFunc("1", func(n flow.Node) flow.NodePatch {
		return flow.NodePatch{Position: flow.Ptr(geometry.XY{X: n.Position.X, Y: 50})}
	}))

	n, ok := inst.Node("1")
	require.True(t, ok)
	assert.Equal(t, geometry.XY{X: 250, Y: 50}, n.Position)
	assert.Equal(t, "Input", n.Data["label"])
}

func TestDeleteCascadesThroughFacade(t *testing.T) {
	inst := New(DefaultOptions())
	inst.FromObject(twoNodeDocument())

	deleted := inst.DeleteElements([]string{"2"}, nil)

	assert.Len(t, deleted.Nodes, 1)
	assert.Len(t, deleted.Edges, 1)
	assert.Empty(t, inst.Edges())
}

func TestFitViewOnInitWaitsForMeasurement(t *testing.T) {
	opts := DefaultOptions()
	opts.FitViewOnInit = true
	inst := New(opts)
	inst.FromObject(twoNodeDocument())

	inst.Measure(Measurement{Container: geometry.Dimensions{Width: 800, Height: 600}})
	assert.True(t, inst.FitPending())
	assert.Equal(t, geometry.Viewport{Zoom: 1}, inst.Viewport())

	inst.Measure(Measurement{Nodes: map[string]geometry.Dimensions{
		"1": {Width: 150, Height: 36},
		"2": {Width: 150, Height: 36},
	}})
	require.False(t, inst.FitPending())

	want := viewport.New()
	want.SetDimensions(800, 600)
	require.True(t, want.FitBounds(geometry.Rect{X: 100, Y: 5, Width: 300, Height: 131}, viewport.DefaultFitViewOptions()))
	assert.InDelta(t, want.Viewport().X, inst.Viewport().X, 1e-9)
	assert.InDelta(t, want.Viewport().Y, inst.Viewport().Y, 1e-9)
	assert.InDelta(t, want.Viewport().Zoom, inst.Viewport().Zoom, 1e-9)

	// Later measurements do not refit.
	inst.PanBy(40, 0)
	before := inst.Viewport()
	inst.Measure(Measurement{Nodes: map[string]geometry.Dimensions{"1": {Width: 200, Height: 50}}})
	assert.Equal(t, before, inst.Viewport())
}

func TestFitViewIdempotent(t *testing.T) {
	inst := New(DefaultOptions())
	inst.FromObject(twoNodeDocument())
	inst.Measure(Measurement{Container: geometry.Dimensions{Width: 640, Height: 480}})

	require.True(t, inst.FitView())
	first := inst.Viewport()
	inst.FitView()
	assert.Equal(t, first, inst.Viewport())
}

func TestEdgePathsUseDefaultType(t *testing.T) {
	opts := DefaultOptions()
	opts.DefaultEdgeType = geometry.EdgeTypeStraight
	inst := New(opts)
	inst.SetNodes([]flow.Node{
		{ID: "a", Position: geometry.XY{X: 0, Y: 0}},
		{ID: "b", Position: geometry.XY{X: 0, Y: 200}},
	})
	inst.SetEdges([]flow.Edge{
		{ID: "ab", Source: "a", Target: "b"},
		{ID: "ab-step", Source: "a", Target: "b", Type: geometry.EdgeTypeStep},
		{ID: "dangling", Source: "a", Target: "ghost"},
	})

	paths := inst.EdgePaths()

	require.Len(t, paths, 2)
	assert.Equal(t, "ab", paths[0].ID)
	assert.Equal(t, geometry.EdgeTypeStraight, paths[0].Type)
	assert.Equal(t, "M 75,36 L 75,200", paths[0].Path)
	assert.InDelta(t, 75, paths[0].LabelX, 1e-9)
	assert.InDelta(t, 118, paths[0].LabelY, 1e-9)
	assert.Equal(t, geometry.EdgeTypeStep, paths[1].Type)
}

func TestConnectionEvents(t *testing.T) {
	inst := New(DefaultOptions())
	inst.SetNodes([]flow.Node{
		{ID: "a", Position: geometry.XY{X: 100, Y: 100}},
		{ID: "b", Position: geometry.XY{X: 400, Y: 100}},
	})
	var started []flow.HandlePoint
	inst.SetHandlers(interaction.Handlers{
		OnConnectStart: func(h flow.HandlePoint) { started = append(started, h) },
	})
	events, _ := record(inst)

	m := inst.Machine()
	m.PointerDown(interaction.PointerEvent{X: 175, Y: 136})
	_, inProgress := inst.ConnectionState()
	require.True(t, inProgress)
	m.PointerMove(interaction.PointerEvent{X: 470, Y: 104})
	m.PointerUp(interaction.PointerEvent{X: 470, Y: 104})

	require.Equal(t, []EventKind{EventConnection, EventEdges, EventConnection}, kinds(*events))
	assert.Equal(t, ConnectionStarted, (*events)[0].Phase)
	assert.Equal(t, "a", (*events)[0].From.NodeID)
	end := (*events)[2]
	assert.Equal(t, ConnectionEnded, end.Phase)
	assert.True(t, end.Committed)
	assert.Equal(t, flow.Connection{Source: "a", Target: "b"}, end.Connection)
	assert.Len(t, started, 1)

	_, ok := inst.Edge("xy-edge__a-b")
	assert.True(t, ok)
}

func TestMinimap(t *testing.T) {
	inst := New(DefaultOptions())
	inst.FromObject(twoNodeDocument())
	inst.UpdateNode("2", flow.NodePatch{Hidden: flow.Ptr(true)})
	inst.Measure(Measurement{Container: geometry.Dimensions{Width: 800, Height: 600}})

	mm := inst.Minimap(200, 150)

	require.Len(t, mm.Nodes, 1)
	assert.Equal(t, "1", mm.Nodes[0].ID)
	assert.Equal(t, geometry.Rect{X: 250, Y: 5, Width: 150, Height: 36}, mm.Nodes[0].Rect)
	assert.Greater(t, mm.View.ViewScale, 0.0)
	assert.True(t, mm.View.ViewBox.ContainsRect(geometry.Rect{X: 0, Y: 0, Width: 800, Height: 600}))
}

func TestMinimapClickCentersViewport(t *testing.T) {
	inst := New(DefaultOptions())
	inst.FromObject(twoNodeDocument())
	inst.Measure(Measurement{Container: geometry.Dimensions{Width: 800, Height: 600}})

	mm := inst.Minimap(200, 150)
	click := geometry.XY{X: 30, Y: 40}
	target := geometry.MinimapToFlow(click, mm.View)

	require.True(t, inst.MinimapClick(click, 200, 150))

	center := inst.ScreenToFlowPosition(geometry.XY{X: 400, Y: 300})
	assert.InDelta(t, target.X, center.X, 1e-9)
	assert.InDelta(t, target.Y, center.Y, 1e-9)
}

func TestSceneOrdersNodesByZ(t *testing.T) {
	opts := DefaultOptions()
	opts.ElevateNodesOnSelect = true
	inst := New(opts)
	inst.FromObject(twoNodeDocument())
	inst.Measure(Measurement{Container: geometry.Dimensions{Width: 800, Height: 600}})
	inst.Store().SelectNodes([]string{"1"}, false)

	s := inst.Scene(SceneOptions{MinimapWidth: 200, MinimapHeight: 150})

	require.Len(t, s.Nodes, 2)
	assert.Equal(t, "2", s.Nodes[0].ID)
	assert.Equal(t, "1", s.Nodes[1].ID)
	assert.Equal(t, "Input", s.Nodes[1].Label)
	assert.True(t, s.Nodes[1].Selected)
	assert.Len(t, s.Nodes[0].Handles, 2)
	assert.Equal(t, 800.0, s.Width)
	assert.Equal(t, geometry.Rect{X: 100, Y: 5, Width: 300, Height: 131}, s.Bounds)
	assert.Len(t, s.Edges, 1)
	require.NotNil(t, s.Minimap)

	assert.Nil(t, inst.Scene(SceneOptions{}).Minimap)
}

func TestObjectRoundTrip(t *testing.T) {
	doc := twoNodeDocument()
	doc.Viewport = geometry.Viewport{X: 12, Y: -4, Zoom: 5}

	inst := New(DefaultOptions())
	inst.FromObject(doc)
	out := inst.ToObject()

	require.Len(t, out.Nodes, 2)
	assert.Equal(t, "1", out.Nodes[0].ID)
	assert.Equal(t, geometry.XY{X: 100, Y: 100}, out.Nodes[1].Position)
	assert.Equal(t, doc.Edges, out.Edges)
	assert.Equal(t, geometry.Viewport{X: 12, Y: -4, Zoom: viewport.DefaultMaxZoom}, out.Viewport)

	lookup := inst.NodeLookup()
	assert.Equal(t, geometry.XY{X: 250, Y: 5}, lookup["1"].Internals.PositionAbsolute)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "viewport", EventViewport.String())
	assert.Equal(t, "unknown", EventKind(42).String())
}
