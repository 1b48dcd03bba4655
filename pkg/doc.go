// Package pkg provides the core libraries for xyflow, a headless engine for
// node-based flow diagrams.
//
// # Overview
//
// A flow is a set of positioned nodes joined by edges. The engine keeps that
// state, maps it between flow coordinates and screen pixels through a pan/zoom
// viewport, turns pointer, wheel and key input into edits, and resolves the
// geometry an adapter needs to draw it.
//
// # Architecture
//
// The typical data flow:
//
//	flow.json
//	    ↓
//	[graph] package (decode and validate the document)
//	    ↓
//	[engine] package (store + viewport + interaction machine)
//	    ↓
//	[graph.Scene] (node rects, handle anchors, edge paths, minimap)
//	    ↓
//	[render] package (SVG, PDF, PNG)
//
// [pipeline] orchestrates these stages with caching, and [render/nodelink]
// supplies Graphviz auto-layout and DOT export.
//
// # Quick Start
//
//	import (
//	    "github.com/MomoChenisMe/xyflow-sub001/pkg/engine"
//	    "github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
//	    "github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
//	    "github.com/MomoChenisMe/xyflow-sub001/pkg/render"
//	)
//
//	doc, _ := graph.ReadFile("flow.json")
//
//	inst := engine.New(engine.DefaultOptions())
//	inst.FromObject(doc)
//	inst.Measure(engine.Measurement{Container: geometry.Dimensions{Width: 800, Height: 600}, Nodes: sizes})
//	inst.FitView()
//
//	svg := render.RenderSVG(inst.Scene(engine.SceneOptions{}))
//
// # Main Packages
//
// ## Geometry and State
//
// [geometry] - Points, rects, viewport transforms, node bounds, edge paths
// (bezier, smoothstep, step, straight) and label anchors. Pure functions.
//
// [flow] - The node and edge store: change sets, parent-relative positions,
// z-order, handle bounds and selection.
//
// [viewport] - The pan/zoom model: zoom clamping, translate extent, fit view
// and snap grid.
//
// ## Interaction
//
// [interaction] - The gesture state machine: pan, box selection, node drag,
// connection drawing, wheel zoom, deletion and nudging.
//
// [engine] - The facade owning store, viewport and machine, with events,
// measurement intake, scene resolution and document round-trips.
//
// ## Infrastructure
//
// [cache] - File and Redis caches for layouts and rendered artifacts.
//
// [observability] - Hooks for gestures, pipeline stages and cache access,
// with a Prometheus implementation in [observability/prom].
//
// [errors] - Coded errors shared by the CLI and the pipeline.
//
// ## Serialization
//
// [graph] - The flow document and resolved scene formats (JSON).
package pkg
