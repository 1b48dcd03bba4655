// Package nodelink bridges flows and Graphviz.
//
// # Overview
//
// Flows carry hand-placed positions. This package gives them two Graphviz
// services through [github.com/goccy/go-graphviz]:
//
//   - [ToDOT] exports a flow as DOT source for external tools
//   - [RenderSVG] renders that DOT in-process
//   - [AutoLayout] runs the dot engine and writes the computed positions
//     back into the flow document
//
// # Usage
//
//	dot := nodelink.ToDOT(doc, nodelink.Options{RankDir: "LR"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
//	laidOut, err := nodelink.AutoLayout(ctx, doc, nodelink.Options{})
//
// # Coordinates
//
// Graphviz measures in points with the y axis pointing up. [AutoLayout]
// converts to flow units (one point is one unit) with y pointing down, and
// stores each node's top-left corner as its position. Child nodes keep their
// parent-relative positions; only top-level nodes are laid out.
package nodelink
