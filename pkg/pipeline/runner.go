package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/cache"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
)

// Runner executes the pipeline with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different options; each run builds
// its own engine instance.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ArtifactTTL overrides [cache.TTLArtifact] when positive.
	ArtifactTTL time.Duration
}

// NewRunner creates a runner. A nil keyer means the default keyer, a nil
// cache disables caching and a nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Run loads the document at path and executes the pipeline on it.
func (r *Runner) Run(ctx context.Context, path string, opts Options) (*Result, error) {
	doc, err := Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if opts.Source == "" {
		opts.Source = path
	}
	return r.Execute(ctx, doc, opts)
}

// Execute runs validate → layout → fit → render on doc.
func (r *Runner) Execute(ctx context.Context, doc graph.Document, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Validate
	dangling, err := Check(doc, opts)
	if err != nil {
		return nil, err
	}
	for _, id := range dangling {
		r.Logger.Warn("dangling edge ignored", "edge", id, "source", opts.Source)
	}

	result := &Result{Artifacts: make(map[string][]byte)}
	result.Stats.NodeCount = len(doc.Nodes)
	result.Stats.EdgeCount = len(doc.Edges)
	result.Stats.DanglingEdges = len(dangling)
	if data, err := graph.Marshal(doc); err == nil {
		result.DocHash = cache.Hash(data)
	}

	// Stage 2: Layout
	if opts.AutoLayout {
		start := time.Now()
		laidOut, hit, err := r.cachedLayout(ctx, doc, result.DocHash, opts)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		doc = laidOut
		result.Stats.LayoutTime = time.Since(start)
		result.CacheInfo.LayoutHit = hit
		r.Logger.Info("computed layout",
			"nodes", len(doc.Nodes),
			"rankdir", opts.RankDir,
			"cached", hit,
			"duration", result.Stats.LayoutTime)
	}

	// Stage 3: Fit
	inst, scene := BuildScene(doc, opts)
	result.Document = inst.ToObject()
	result.Scene = scene
	r.Logger.Debug("fitted viewport", "viewport", scene.Viewport, "bounds", scene.Bounds)

	// Stage 4: Render
	start := time.Now()
	artifacts, hit, err := r.cachedRender(ctx, scene, result.Document, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout runs auto-layout on doc through the cache and reports whether the
// positions came from the cache. Dangling edges are checked as in [Execute].
func (r *Runner) Layout(ctx context.Context, doc graph.Document, opts Options) (graph.Document, bool, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Document{}, false, fmt.Errorf("invalid options: %w", err)
	}
	if _, err := Check(doc, opts); err != nil {
		return graph.Document{}, false, err
	}
	var docHash string
	if data, err := graph.Marshal(doc); err == nil {
		docHash = cache.Hash(data)
	}
	return r.cachedLayout(ctx, doc, docHash, opts)
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
