package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/cache"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/engine"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/observability"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/render/nodelink"
)

// layoutEngine names the layout engine in hooks.
const layoutEngine = "dot"

// =============================================================================
// Auto-layout
// =============================================================================

// autoLayout is replaced in tests that run without Graphviz.
var autoLayout = nodelink.AutoLayout

// GenerateLayout runs the Graphviz auto-layout over doc.
func GenerateLayout(ctx context.Context, doc graph.Document, opts Options) (graph.Document, error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, layoutEngine, len(doc.Nodes))
	start := time.Now()
	out, err := autoLayout(ctx, doc, opts.LayoutOptions())
	hooks.OnLayoutComplete(ctx, layoutEngine, time.Since(start), err)
	return out, err
}

// positions extracts node positions for caching.
func positions(doc graph.Document) map[string]geometry.XY {
	out := make(map[string]geometry.XY, len(doc.Nodes))
	for _, n := range doc.Nodes {
		out[n.ID] = n.Position
	}
	return out
}

// applyPositions returns a copy of doc with cached positions applied.
func applyPositions(doc graph.Document, pos map[string]geometry.XY) graph.Document {
	out := doc
	out.Nodes = append(doc.Nodes[:0:0], doc.Nodes...)
	for i, n := range out.Nodes {
		if p, ok := pos[n.ID]; ok {
			out.Nodes[i].Position = p
		}
	}
	return out
}

// =============================================================================
// Fit
// =============================================================================

// HeadlessMeasurement sizes every unmeasured node with the engine default
// and sets the container, standing in for an adapter's post-paint read.
func HeadlessMeasurement(doc graph.Document, eo engine.Options, width, height float64) engine.Measurement {
	m := engine.Measurement{
		Container: geometry.Dimensions{Width: width, Height: height},
		Nodes:     make(map[string]geometry.Dimensions),
	}
	for _, n := range doc.Nodes {
		if n.Measured() {
			continue
		}
		m.Nodes[n.ID] = geometry.Dimensions{Width: eo.DefaultNodeWidth, Height: eo.DefaultNodeHeight}
	}
	return m
}

// BuildScene loads doc into a fresh engine instance, measures it headlessly
// and resolves the scene. The instance is returned for callers that keep
// interacting with the flow.
func BuildScene(doc graph.Document, opts Options) (*engine.Instance, graph.Scene) {
	eo := opts.EngineOptions()
	inst := engine.New(eo)
	inst.FromObject(doc)
	inst.Measure(HeadlessMeasurement(doc, eo, opts.Width, opts.Height))

	var so engine.SceneOptions
	if opts.Minimap {
		so.MinimapWidth = opts.MinimapWidth
		so.MinimapHeight = opts.MinimapHeight
	}
	return inst, inst.Scene(so)
}

// cachedLayout runs auto-layout through the cache.
func (r *Runner) cachedLayout(ctx context.Context, doc graph.Document, docHash string, opts Options) (graph.Document, bool, error) {
	key := r.Keyer.LayoutKey(docHash, opts.LayoutKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		var pos map[string]geometry.XY
		if err := cache.GetJSON(ctx, r.Cache, key, &pos); err == nil {
			hooks.OnCacheHit(ctx, "layout")
			return applyPositions(doc, pos), true, nil
		}
	}
	hooks.OnCacheMiss(ctx, "layout")

	out, err := GenerateLayout(ctx, doc, opts)
	if err != nil {
		return graph.Document{}, false, err
	}
	if data, err := json.Marshal(positions(out)); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache layout", "error", err)
		} else {
			hooks.OnCacheSet(ctx, "layout", len(data))
		}
	}
	return out, false, nil
}
