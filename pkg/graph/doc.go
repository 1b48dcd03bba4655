// Package graph provides the serialization types for flows and rendered
// scenes.
//
// This package defines the canonical wire format for xyflow data, used for
// JSON files, caching and cross-tool interoperability.
//
// # Architecture
//
// The package sits at the serialization boundary between the live engine and
// external formats:
//
//   - [Document]: a flow as saved by toObject (nodes, edges, viewport)
//   - [Scene]: derived geometry for renderers (node rects, edge paths, minimap)
//   - pkg/flow.Store: the live node/edge store
//
// pkg/engine converts between them with ToObject/FromObject and Scene.
//
// # Document Serialization
//
// Documents use the xyflow object format:
//
//	{
//	  "nodes": [{"id": "1", "position": {"x": 0, "y": 0}, "data": {"label": "A"}}],
//	  "edges": [{"id": "e1-2", "source": "1", "target": "2"}],
//	  "viewport": {"x": 0, "y": 0, "zoom": 1}
//	}
//
// Common operations:
//
//	doc, _ := graph.ReadFile("flow.json")     // File → Document
//	graph.WriteFile(doc, "out.json")          // Document → File
//	data, _ := graph.Marshal(doc)             // Document → []byte
//	doc, _ = graph.Unmarshal(data)            // []byte → Document
//
// # Validation
//
// [Validate] checks ids, duplicates and edge types. Edges whose endpoints are
// missing are tolerated unless [ValidateOptions.Strict] is set, in which case
// the error wraps [ErrDanglingEdge].
//
// # Node Data
//
// The data object is opaque to the engine. Recognized keys:
//
//	label   Display label (defaults to the node ID)
//	color   Fill colour used by the SVG renderer
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
