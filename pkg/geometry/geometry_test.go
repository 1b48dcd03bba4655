package geometry

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type box struct {
	pos    XY
	w, h   float64
	hidden bool
}

func (b box) Rect() Rect { return Rect{X: b.pos.X, Y: b.pos.Y, Width: b.w, Height: b.h} }

func TestGetNodesBounds(t *testing.T) {
	nodes := []box{
		{pos: XY{X: 250, Y: 5}, w: 150, h: 36},
		{pos: XY{X: 100, Y: 100}, w: 150, h: 36},
	}

	got := GetNodesBounds(nodes, nil)
	assert.Equal(t, Rect{X: 100, Y: 5, Width: 300, Height: 131}, got)
}

func TestGetNodesBoundsFilter(t *testing.T) {
	nodes := []box{
		{pos: XY{X: 0, Y: 0}, w: 10, h: 10},
		{pos: XY{X: 500, Y: 500}, w: 10, h: 10, hidden: true},
	}

	got := GetNodesBounds(nodes, func(b box) bool { return !b.hidden })
	assert.Equal(t, Rect{Width: 10, Height: 10}, got)
}

func TestGetNodesBoundsEmpty(t *testing.T) {
	assert.Equal(t, Rect{}, GetNodesBounds([]box(nil), nil))
	assert.Equal(t, Rect{}, GetRectsBounds(nil))
}

func TestGetBoundsOfRectsAssociative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	randRect := func() Rect {
		return Rect{
			X:      float64(rng.Intn(2000) - 1000),
			Y:      float64(rng.Intn(2000) - 1000),
			Width:  float64(rng.Intn(400)),
			Height: float64(rng.Intn(400)),
		}
	}

	for i := 0; i < 200; i++ {
		a, b, c := randRect(), randRect(), randRect()
		left := GetBoundsOfRects(a, GetBoundsOfRects(b, c))
		right := GetBoundsOfRects(GetBoundsOfRects(a, b), c)
		assert.InDelta(t, left.X, right.X, 1e-9)
		assert.InDelta(t, left.Y, right.Y, 1e-9)
		assert.InDelta(t, left.Width, right.Width, 1e-9)
		assert.InDelta(t, left.Height, right.Height, 1e-9)
	}
}

func TestOverlapArea(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want float64
	}{
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 10, 10}, 0},
		{"touching", Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10}, 0},
		{"partial", Rect{0, 0, 10, 10}, Rect{5, 5, 10, 10}, 25},
		{"contained", Rect{0, 0, 10, 10}, Rect{2, 2, 2, 2}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverlapArea(tt.a, tt.b))
		})
	}
}

func TestRectContainsRect(t *testing.T) {
	outer := Rect{X: 10, Y: 10, Width: 190, Height: 140}
	assert.True(t, outer.ContainsRect(Rect{X: 20, Y: 20, Width: 50, Height: 50}))
	assert.False(t, outer.ContainsRect(Rect{X: 180, Y: 20, Width: 50, Height: 50}))
	assert.True(t, outer.Intersects(Rect{X: 180, Y: 20, Width: 50, Height: 50}))
}

func TestCoordinateRoundTrip(t *testing.T) {
	viewports := []Viewport{
		{X: 0, Y: 0, Zoom: 1},
		{X: 120.5, Y: -40, Zoom: 0.37},
		{X: -900, Y: 300, Zoom: 2.75},
	}
	points := []XY{{0, 0}, {13.3, 999}, {-250, 47.25}}

	for _, vp := range viewports {
		for _, p := range points {
			flow := PointToRendererPoint(p, vp, false, XY{})
			back := RendererPointToPoint(flow, vp)
			assert.InDelta(t, p.X, back.X, 1e-9)
			assert.InDelta(t, p.Y, back.Y, 1e-9)
		}
	}
}

func TestSnapPosition(t *testing.T) {
	assert.Equal(t, XY{X: 30, Y: 15}, SnapPosition(XY{X: 28, Y: 16}, XY{X: 15, Y: 15}))
	assert.Equal(t, XY{X: 28.4, Y: 20}, SnapPosition(XY{X: 28.4, Y: 16}, XY{X: 0, Y: 10}))
}

func TestGetViewportForBounds(t *testing.T) {
	vp, ok := GetViewportForBounds(Rect{X: 0, Y: 0, Width: 100, Height: 100}, 800, 400, 0.5, 2, 0)
	require.True(t, ok)
	assert.InDelta(t, 2.0, vp.Zoom, 1e-9, "zoom should clamp to max")
	assert.InDelta(t, 300.0, vp.X, 1e-9)
	assert.InDelta(t, 100.0, vp.Y, 1e-9)

	vp, ok = GetViewportForBounds(Rect{X: 0, Y: 0, Width: 1000, Height: 100}, 800, 400, 0.1, 2, 0.25)
	require.True(t, ok)
	assert.InDelta(t, 800.0/1250.0, vp.Zoom, 1e-9)

	_, ok = GetViewportForBounds(Rect{Width: 10, Height: 10}, 0, 400, 0.5, 2, 0)
	assert.False(t, ok)
}

func TestGetBezierPath(t *testing.T) {
	p := GetBezierPath(BezierParams{PathParams: PathParams{
		SourceX: 0, SourceY: 0, SourcePosition: Bottom,
		TargetX: 100, TargetY: 100, TargetPosition: Top,
	}})

	assert.True(t, strings.HasPrefix(p.Path, "M 0,0 C"), p.Path)
	assert.Equal(t, "M 0,0 C 0,35.36 100,64.64 100,100", p.Path)
	assert.Equal(t, 50.0, p.LabelX)
	assert.Equal(t, 50.0, p.LabelY)
	assert.Equal(t, 50.0, p.OffsetX)
}

func TestGetBezierPathCurvature(t *testing.T) {
	p := GetBezierPath(BezierParams{
		PathParams: PathParams{SourceX: 0, SourceY: 0, SourcePosition: Right, TargetX: 100, TargetY: 0, TargetPosition: Left},
		Curvature:  0.5,
	})
	assert.Equal(t, "M 0,0 C 50,0 50,0 100,0", p.Path)
}

func TestGetStraightPath(t *testing.T) {
	p := GetStraightPath(PathParams{SourceX: 10, SourceY: 20, TargetX: 30, TargetY: 60})
	assert.Equal(t, "M 10,20 L 30,60", p.Path)
	assert.Equal(t, 20.0, p.LabelX)
	assert.Equal(t, 40.0, p.LabelY)
}

func TestGetSimpleBezierPath(t *testing.T) {
	p := GetSimpleBezierPath(PathParams{
		SourceX: 0, SourceY: 0, SourcePosition: Bottom,
		TargetX: 100, TargetY: 100, TargetPosition: Top,
	})
	assert.Equal(t, "M 0,0 C 0,50 100,50 100,100", p.Path)
	assert.InDelta(t, 50.0, p.LabelX, 1e-9)
	assert.InDelta(t, 50.0, p.LabelY, 1e-9)
}

func TestGetStepPath(t *testing.T) {
	params := SmoothStepParams{PathParams: PathParams{
		SourceX: 0, SourceY: 0, SourcePosition: Bottom,
		TargetX: 100, TargetY: 100, TargetPosition: Top,
	}}

	step := GetStepPath(params)
	assert.Equal(t, "M 0,0 L 0,20 L 0,50 L 100,50 L 100,80 L 100,100", step.Path)
	assert.Equal(t, 50.0, step.LabelX)
	assert.Equal(t, 50.0, step.LabelY)

	smooth := GetSmoothStepPath(params)
	assert.Equal(t, "M 0,0 L 0,20 L 0,45 Q 0,50 5,50 L 95,50 Q 100,50 100,55 L 100,80 L 100,100", smooth.Path)
}

func TestGetEdgePathDispatch(t *testing.T) {
	pp := PathParams{SourceX: 0, SourceY: 0, TargetX: 10, TargetY: 10}
	assert.Equal(t, GetStraightPath(pp), GetEdgePath(EdgeTypeStraight, pp))
	assert.Equal(t, GetBezierPath(BezierParams{PathParams: pp}), GetEdgePath("unknown", pp))
	assert.Equal(t, GetBezierPath(BezierParams{PathParams: pp}), GetEdgePath("", pp))

	assert.True(t, ValidEdgeType(""))
	assert.True(t, ValidEdgeType(EdgeTypeSmoothStep))
	assert.False(t, ValidEdgeType("zigzag"))
}

func TestComputeMinimapViewBox(t *testing.T) {
	view := ComputeMinimapViewBox(
		Rect{X: 0, Y: 0, Width: 100, Height: 100},
		Rect{X: 0, Y: 0, Width: 200, Height: 100},
		200, 150, 5,
	)

	assert.Equal(t, 1.0, view.ViewScale)
	assert.Equal(t, 5.0, view.Offset)
	assert.Equal(t, Rect{X: -5, Y: -30, Width: 210, Height: 160}, view.ViewBox)
	assert.Equal(t, "M-10,-35h220v170h-220z M0,0h200v100h-200z", view.MaskPath)
}

func TestComputeMinimapViewBoxNoNodes(t *testing.T) {
	vpBB := Rect{X: 50, Y: 50, Width: 400, Height: 300}
	view := ComputeMinimapViewBox(Rect{}, vpBB, 200, 150, 0)

	assert.Equal(t, 2.0, view.ViewScale)
	assert.Equal(t, vpBB, view.ViewBox)
}

func TestMinimapToFlow(t *testing.T) {
	view := MinimapView{ViewBox: Rect{X: -100, Y: -50, Width: 400, Height: 300}, Width: 200, Height: 150}
	assert.Equal(t, XY{X: 100, Y: 100}, MinimapToFlow(XY{X: 100, Y: 75}, view))
}
