// Package geometry provides the pure coordinate math behind the flow engine.
//
// # Overview
//
// Everything in this package is a stateless function over small value types.
// Nothing here knows about stores, listeners or input events, which keeps the
// math independently testable and lets any renderer (SVG, canvas, terminal)
// reuse it.
//
// The package covers four areas:
//
//   - Rectangles: [Rect], [Box], [GetBoundsOfRects], [GetRectsBounds],
//     [GetNodesBounds], [OverlapArea]
//   - Coordinate systems: [Viewport], [PointToRendererPoint],
//     [RendererPointToPoint], [GetViewportForBounds]
//   - Edge paths: [GetBezierPath], [GetSimpleBezierPath], [GetStraightPath],
//     [GetSmoothStepPath], [GetStepPath], dispatched by [GetEdgePath]
//   - Minimap: [ComputeMinimapViewBox] and [MinimapToFlow]
//
// # Coordinate Spaces
//
// Flow coordinates are the zoom/pan independent space node positions live
// in. Screen coordinates are pixels inside the rendered container. A
// [Viewport] maps one to the other:
//
//	screen = flow*zoom + (x, y)
//	flow   = (screen - (x, y)) / zoom
//
// # Edge Paths
//
// Path builders return SVG path data plus a label anchor:
//
//	p := geometry.GetBezierPath(geometry.BezierParams{
//	    PathParams: geometry.PathParams{
//	        SourceX: 0, SourceY: 0, SourcePosition: geometry.Bottom,
//	        TargetX: 100, TargetY: 100, TargetPosition: geometry.Top,
//	    },
//	})
//	// p.Path   == "M 0,0 C 0,35.36 100,64.64 100,100"
//	// p.LabelX == 50, p.LabelY == 50
//
// The bezier label is the linear midpoint of the two endpoints, not the
// parametric midpoint of the curve. Renderers that place labels on the curve
// itself should evaluate the curve.
package geometry
