// Package render draws flow scenes.
//
// # Overview
//
// This package turns a [graph.Scene] (node rectangles, edge paths and an
// optional minimap, already resolved by pkg/engine) into output files:
//
//   - SVG via [RenderSVG], written in-process
//   - PDF and PNG via [ToPDF] and [ToPNG], converted from SVG
//   - Graphviz DOT and auto-layout in the [nodelink] subpackage
//
// # SVG Rendering
//
//	scene := inst.Scene(engine.SceneOptions{MinimapWidth: 200, MinimapHeight: 150})
//	svg := render.RenderSVG(scene, render.WithBackground("#f8f8f8"))
//
// Node and edge geometry is drawn inside a group carrying the viewport
// transform, so the SVG shows exactly what the viewport shows. The minimap is
// a nested SVG in the bottom-right corner whose mask hides everything outside
// the visible area.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg).
//
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/MomoChenisMe/xyflow-sub001/pkg/render/nodelink
package render
