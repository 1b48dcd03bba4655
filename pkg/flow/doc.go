// Package flow holds the authoritative node and edge state of a flow.
//
// # Overview
//
// A [Store] owns the node list, the edge list and a derived lookup of
// [InternalNode] values (absolute position, resolved size, stacking order).
// Every mutation funnels through the store, rebuilds the lookup before it
// returns and then notifies subscribers, so the next read by any consumer
// (main canvas, minimap, edge renderer) observes consistent state:
//
//	s := flow.New()
//	s.SetNodes([]flow.Node{
//	    {ID: "1", Position: geometry.XY{X: 250, Y: 5}},
//	    {ID: "2", Position: geometry.XY{X: 100, Y: 100}},
//	})
//	s.AddEdges(flow.Edge{ID: "e1-2", Source: "1", Target: "2"})
//	s.DeleteElements([]string{"2"}, nil) // also removes e1-2
//
// # Integrity
//
// Deleting a node always deletes every edge that references it, and every
// node parented to it. References to unknown ids are ignored rather than
// reported: interaction can race with removal and a stale id is not an error.
//
// Edges whose endpoints do not exist are kept by default and filtered by
// [Store.RenderableEdges]. [WithStrictEdges] drops them on insert instead.
//
// # Measurement
//
// Nodes start unmeasured. Geometry uses [DefaultNodeWidth]×[DefaultNodeHeight]
// until the rendering adapter reports real sizes through
// [Store.SetDimensions] once the nodes are on screen.
//
// # Concurrency
//
// A Store is a single-threaded reducer. It is not safe for concurrent use;
// listeners run synchronously on the mutating goroutine.
package flow
