package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/cache"
	xerrors "github.com/MomoChenisMe/xyflow-sub001/pkg/errors"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/observability"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/render"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats. DOT output is
// built from doc; everything else is drawn from scene.
func Render(ctx context.Context, scene graph.Scene, doc graph.Document, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var svg []byte
	svgData := func() []byte {
		if svg == nil {
			svg = render.RenderSVG(scene, svgOptions(opts)...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svgData()
		case FormatPNG:
			data, err = render.ToPNG(ctx, svgData(), opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, svgData())
		case FormatJSON:
			data, err = graph.MarshalScene(scene)
		case FormatDOT:
			data = []byte(nodelink.ToDOT(doc, opts.LayoutOptions()))
		default:
			return nil, xerrors.New(xerrors.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// svgOptions builds SVG rendering options.
func svgOptions(opts Options) []render.SVGOption {
	var svgOpts []render.SVGOption
	if opts.Background != "" {
		svgOpts = append(svgOpts, render.WithBackground(opts.Background))
	}
	if opts.Handles {
		svgOpts = append(svgOpts, render.WithHandles())
	}
	return svgOpts
}

// cachedRender renders through the cache. DOT is never cached: it depends on
// the document rather than the scene and costs nothing to rebuild.
func (r *Runner) cachedRender(ctx context.Context, scene graph.Scene, doc graph.Document, opts Options) (map[string][]byte, bool, error) {
	sceneData, err := graph.MarshalScene(scene)
	if err != nil {
		return nil, false, fmt.Errorf("serialize scene for cache key: %w", err)
	}
	sceneHash := cache.Hash(sceneData)
	hooks := observability.Cache()

	if !opts.Refresh && cacheable(opts.Formats) {
		artifacts := make(map[string][]byte, len(opts.Formats))
		allCached := true
		for _, format := range opts.Formats {
			if format == FormatDOT {
				continue
			}
			key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				allCached = false
				break
			}
			artifacts[format] = data
		}
		if allCached {
			hooks.OnCacheHit(ctx, "artifact")
			for _, format := range opts.Formats {
				if format == FormatDOT {
					artifacts[format] = []byte(nodelink.ToDOT(doc, opts.LayoutOptions()))
				}
			}
			return artifacts, true, nil
		}
	}
	hooks.OnCacheMiss(ctx, "artifact")

	pipeHooks := observability.Pipeline()
	pipeHooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, scene, doc, opts)
	pipeHooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		if format == FormatDOT {
			continue
		}
		key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.artifactTTL()); err != nil {
			r.Logger.Warn("cache artifact", "format", format, "error", err)
			continue
		}
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

func cacheable(formats []string) bool {
	for _, f := range formats {
		if f != FormatDOT {
			return true
		}
	}
	return false
}

func (r *Runner) artifactTTL() time.Duration {
	if r.ArtifactTTL > 0 {
		return r.ArtifactTTL
	}
	return cache.TTLArtifact
}
