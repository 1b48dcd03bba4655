package geometry

import "math"

// Boxed is implemented by anything occupying a rectangle in flow space.
type Boxed interface {
	Rect() Rect
}

// GetBoundsOfBoxes returns the smallest box enclosing a and b.
func GetBoundsOfBoxes(a, b Box) Box {
	return Box{
		X:  math.Min(a.X, b.X),
		Y:  math.Min(a.Y, b.Y),
		X2: math.Max(a.X2, b.X2),
		Y2: math.Max(a.Y2, b.Y2),
	}
}

// GetBoundsOfRects returns the smallest rectangle enclosing a and b.
func GetBoundsOfRects(a, b Rect) Rect {
	return GetBoundsOfBoxes(a.Box(), b.Box()).Rect()
}

// GetRectsBounds folds [GetBoundsOfRects] over rects. An empty slice yields
// the zero Rect; callers must check len(rects) before using the result to
// compute a zoom level.
func GetRectsBounds(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	box := rects[0].Box()
	for _, r := range rects[1:] {
		box = GetBoundsOfBoxes(box, r.Box())
	}
	return box.Rect()
}

// GetNodesBounds returns the union of the rectangles of the nodes accepted by
// filter. A nil filter accepts every node. The zero Rect is returned when no
// node matches.
func GetNodesBounds[T Boxed](nodes []T, filter func(T) bool) Rect {
	rects := make([]Rect, 0, len(nodes))
	for _, n := range nodes {
		if filter != nil && !filter(n) {
			continue
		}
		rects = append(rects, n.Rect())
	}
	return GetRectsBounds(rects)
}

// OverlapArea returns the area shared by a and b, or 0 when they are
// disjoint.
func OverlapArea(a, b Rect) float64 {
	xOverlap := math.Max(0, math.Min(a.X+a.Width, b.X+b.Width)-math.Max(a.X, b.X))
	yOverlap := math.Max(0, math.Min(a.Y+a.Height, b.Y+b.Height)-math.Max(a.Y, b.Y))
	return xOverlap * yOverlap
}

// HandleAnchor returns the midpoint of side on r.
func HandleAnchor(r Rect, side Position) XY {
	switch side {
	case Left:
		return XY{X: r.X, Y: r.Y + r.Height/2}
	case Right:
		return XY{X: r.X + r.Width, Y: r.Y + r.Height/2}
	case Top:
		return XY{X: r.X + r.Width/2, Y: r.Y}
	default:
		return XY{X: r.X + r.Width/2, Y: r.Y + r.Height}
	}
}

// SnapPosition rounds p to the nearest multiple of grid on each axis. A
// non-positive grid component leaves that axis unchanged.
func SnapPosition(p XY, grid XY) XY {
	out := p
	if grid.X > 0 {
		out.X = grid.X * math.Round(p.X/grid.X)
	}
	if grid.Y > 0 {
		out.Y = grid.Y * math.Round(p.Y/grid.Y)
	}
	return out
}

// PointToRendererPoint converts a screen point to flow coordinates. When
// snap is true the result is snapped to grid.
func PointToRendererPoint(p XY, vp Viewport, snap bool, grid XY) XY {
	out := XY{X: (p.X - vp.X) / vp.Zoom, Y: (p.Y - vp.Y) / vp.Zoom}
	if snap {
		return SnapPosition(out, grid)
	}
	return out
}

// RendererPointToPoint converts a flow point to screen coordinates.
func RendererPointToPoint(p XY, vp Viewport) XY {
	return XY{X: p.X*vp.Zoom + vp.X, Y: p.Y*vp.Zoom + vp.Y}
}

// RectToScreen projects a flow-space rectangle into screen space.
func RectToScreen(r Rect, vp Viewport) Rect {
	tl := RendererPointToPoint(XY{X: r.X, Y: r.Y}, vp)
	return Rect{X: tl.X, Y: tl.Y, Width: r.Width * vp.Zoom, Height: r.Height * vp.Zoom}
}

// VisibleRect returns the flow-space rectangle shown by a container of the
// given size under vp.
func VisibleRect(vp Viewport, width, height float64) Rect {
	return Rect{
		X:      -vp.X / vp.Zoom,
		Y:      -vp.Y / vp.Zoom,
		Width:  width / vp.Zoom,
		Height: height / vp.Zoom,
	}
}

// GetViewportForBounds computes the transform that centers bounds in a
// container of width×height. Padding is a fraction of the content size added
// before scaling, so 0.1 leaves 10% of the bounds as margin. The zoom is
// clamped to [minZoom, maxZoom].
//
// The second return value is false when the container has no area; the
// returned viewport is then meaningless.
func GetViewportForBounds(bounds Rect, width, height, minZoom, maxZoom, padding float64) (Viewport, bool) {
	if width <= 0 || height <= 0 {
		return Viewport{}, false
	}
	xZoom := width / (bounds.Width * (1 + padding))
	yZoom := height / (bounds.Height * (1 + padding))
	zoom := Clamp(math.Min(xZoom, yZoom), minZoom, maxZoom)

	center := bounds.Center()
	return Viewport{
		X:    width/2 - center.X*zoom,
		Y:    height/2 - center.Y*zoom,
		Zoom: zoom,
	}, true
}
