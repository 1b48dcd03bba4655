package geometry

import (
	"fmt"
	"math"
)

// DefaultMinimapOffsetScale is the padding around minimap content, in
// minimap pixels.
const DefaultMinimapOffsetScale = 5.0

// MinimapView is everything a minimap renderer needs: the SVG viewBox, the
// flow units per minimap pixel and the even-odd mask path whose hole shows the
// visible part of the flow.
type MinimapView struct {
	ViewBox   Rect    `json:"view_box"`
	ViewScale float64 `json:"view_scale"`
	Offset    float64 `json:"offset"`
	MaskPath  string  `json:"mask_path"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

// ComputeMinimapViewBox fits the union of nodeBounds and viewportBB into an
// element of elementWidth×elementHeight pixels.
//
// The minimap scale is max(union.width/elementWidth, union.height/elementHeight);
// the view box is centered on the union and padded by offsetScale*scale on all
// sides. Pass a zero nodeBounds when the flow has no nodes to frame only the
// viewport.
func ComputeMinimapViewBox(nodeBounds, viewportBB Rect, elementWidth, elementHeight, offsetScale float64) MinimapView {
	bounds := viewportBB
	if nodeBounds != (Rect{}) {
		bounds = GetBoundsOfRects(nodeBounds, viewportBB)
	}
	view := MinimapView{Width: elementWidth, Height: elementHeight}
	if elementWidth <= 0 || elementHeight <= 0 {
		return view
	}

	scale := math.Max(bounds.Width/elementWidth, bounds.Height/elementHeight)
	viewWidth := scale * elementWidth
	viewHeight := scale * elementHeight
	offset := offsetScale * scale

	view.ViewScale = scale
	view.Offset = offset
	view.ViewBox = Rect{
		X:      bounds.X - (viewWidth-bounds.Width)/2 - offset,
		Y:      bounds.Y - (viewHeight-bounds.Height)/2 - offset,
		Width:  viewWidth + offset*2,
		Height: viewHeight + offset*2,
	}
	view.MaskPath = minimapMask(view.ViewBox, offset, viewportBB)
	return view
}

// minimapMask draws the view box grown by offset as the outer ring and the
// viewport as the inner ring. Rendered with fill-rule="evenodd" the viewport
// becomes a cutout.
func minimapMask(vb Rect, offset float64, viewport Rect) string {
	return fmt.Sprintf("M%s,%sh%sv%sh%sz M%s,%sh%sv%sh%sz",
		ftoa(vb.X-offset), ftoa(vb.Y-offset),
		ftoa(vb.Width+offset*2), ftoa(vb.Height+offset*2), ftoa(-vb.Width-offset*2),
		ftoa(viewport.X), ftoa(viewport.Y),
		ftoa(viewport.Width), ftoa(viewport.Height), ftoa(-viewport.Width))
}

// MinimapToFlow converts a point in minimap element pixels to flow
// coordinates.
func MinimapToFlow(p XY, view MinimapView) XY {
	if view.Width <= 0 || view.Height <= 0 {
		return XY{}
	}
	sx := view.ViewBox.Width / view.Width
	sy := view.ViewBox.Height / view.Height
	return XY{X: view.ViewBox.X + p.X*sx, Y: view.ViewBox.Y + p.Y*sy}
}
