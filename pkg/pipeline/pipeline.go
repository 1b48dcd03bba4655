// Package pipeline turns flow documents into rendered artifacts.
//
// This package implements the load → layout → fit → render pipeline shared by
// every CLI command that produces output, so that the flags of `render`,
// `layout` and `inspect` mean the same thing everywhere.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: read and validate a flow document
//  2. Layout: optionally replace node positions with a Graphviz layout
//  3. Fit: measure nodes headlessly and fit the viewport to the container
//  4. Render: draw the scene in the requested formats (SVG, PNG, PDF, JSON, DOT)
//
// Layouts and artifacts are cached by content hash; see pkg/cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Run(ctx, "flow.json", pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	    Minimap: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/cache"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/engine"
	xerrors "github.com/MomoChenisMe/xyflow-sub001/pkg/errors"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/render/nodelink"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default container width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default container height in pixels.
	DefaultHeight = 600.0

	// DefaultMinimapWidth and DefaultMinimapHeight size the minimap overlay.
	DefaultMinimapWidth  = 200.0
	DefaultMinimapHeight = 150.0

	// DefaultPNGScale is the rasterisation scale for PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Source names the document in logs and hooks.
	Source string `json:"source,omitempty"`
	// Strict rejects documents with dangling edges instead of warning.
	Strict bool `json:"strict,omitempty"`

	// Layout options
	AutoLayout bool    `json:"auto_layout,omitempty"`
	RankDir    string  `json:"rankdir,omitempty"`
	NodeSep    float64 `json:"nodesep,omitempty"`
	RankSep    float64 `json:"ranksep,omitempty"`

	// Fit options
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	// NoFit keeps the document viewport instead of fitting the nodes.
	NoFit bool `json:"no_fit,omitempty"`

	// Render options
	Formats       []string `json:"formats,omitempty"`
	Minimap       bool     `json:"minimap,omitempty"`
	MinimapWidth  float64  `json:"minimap_width,omitempty"`
	MinimapHeight float64  `json:"minimap_height,omitempty"`
	Background    string   `json:"background,omitempty"`
	Handles       bool     `json:"handles,omitempty"`
	Scale         float64  `json:"scale,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Engine *engine.Options `json:"-"`
	Logger *log.Logger     `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the flow after layout and fitting.
	Document graph.Document

	// DocHash is the content hash of the loaded document.
	DocHash string

	// Scene is the resolved drawable geometry.
	Scene graph.Scene

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	EdgeCount     int
	DanglingEdges int
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	LayoutHit bool // Whether auto-layout positions came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := xerrors.ValidateFormat(f, ValidFormats...); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, lower-casing and
// de-duplicating entries.
func ParseFormats(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for i, f := range o.Formats {
		o.Formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Background != "" {
		if err := xerrors.ValidateColor(o.Background); err != nil {
			return err
		}
	}
	switch strings.ToUpper(o.RankDir) {
	case "":
		o.RankDir = nodelink.RankTB
	case nodelink.RankTB, nodelink.RankLR, nodelink.RankBT, nodelink.RankRL:
		o.RankDir = strings.ToUpper(o.RankDir)
	default:
		return xerrors.New(xerrors.ErrCodeInvalidInput, "invalid rankdir %q (must be one of: TB, LR, BT, RL)", o.RankDir)
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.MinimapWidth <= 0 {
		o.MinimapWidth = DefaultMinimapWidth
	}
	if o.MinimapHeight <= 0 {
		o.MinimapHeight = DefaultMinimapHeight
	}
	if o.Scale <= 0 {
		o.Scale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.validated = true
	return nil
}

// LayoutOptions returns the Graphviz options.
func (o *Options) LayoutOptions() nodelink.Options {
	return nodelink.Options{RankDir: o.RankDir, NodeSep: o.NodeSep, RankSep: o.RankSep}
}

// EngineOptions returns the engine options for the fit stage: o.Engine or
// the defaults, with fitting and logging applied.
func (o *Options) EngineOptions() engine.Options {
	eo := engine.DefaultOptions()
	if o.Engine != nil {
		eo = *o.Engine
	}
	eo.FitViewOnInit = !o.NoFit
	if eo.Logger == nil {
		eo.Logger = o.Logger
	}
	return eo
}

// LayoutKeyOpts returns cache key options for auto-layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{RankDir: o.RankDir, NodeSep: o.NodeSep, RankSep: o.RankSep}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Background: o.Background, Handles: o.Handles}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
