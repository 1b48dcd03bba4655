// Package config loads the xyflow TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/xyflow/config.toml (default
// ~/.config/xyflow/config.toml). Missing files and missing keys fall back to
// [Default]; command-line flags override whatever the file sets.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/cache"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/engine"
	xerrors "github.com/MomoChenisMe/xyflow-sub001/pkg/errors"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/interaction"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/viewport"
)

const appName = "xyflow"

// Config holds xyflow configuration.
type Config struct {
	Viewport    ViewportConfig    `toml:"viewport"`
	Nodes       NodesConfig       `toml:"nodes"`
	Interaction InteractionConfig `toml:"interaction"`
	Edges       EdgesConfig       `toml:"edges"`
	Render      RenderConfig      `toml:"render"`
	Cache       CacheConfig       `toml:"cache"`
}

// ViewportConfig controls zoom limits and fitting.
type ViewportConfig struct {
	MinZoom    float64 `toml:"min_zoom"`
	MaxZoom    float64 `toml:"max_zoom"`
	FitPadding float64 `toml:"fit_padding"`
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
}

// NodesConfig controls node sizing and placement.
type NodesConfig struct {
	DefaultWidth    float64    `toml:"default_width"`
	DefaultHeight   float64    `toml:"default_height"`
	ElevateOnSelect bool       `toml:"elevate_on_select"`
	SnapToGrid      bool       `toml:"snap_to_grid"`
	SnapGrid        [2]float64 `toml:"snap_grid"`
}

// InteractionConfig controls gesture recognition.
type InteractionConfig struct {
	DragThreshold    float64 `toml:"drag_threshold"`
	SelectionMode    string  `toml:"selection_mode"`  // "partial", "full"
	ConnectionMode   string  `toml:"connection_mode"` // "strict", "loose"
	ConnectionRadius float64 `toml:"connection_radius"`
	PanOnScroll      bool    `toml:"pan_on_scroll"`
	SelectionOnDrag  bool    `toml:"selection_on_drag"`
}

// EdgesConfig controls edge drawing and validation.
type EdgesConfig struct {
	DefaultType string  `toml:"default_type"`
	Curvature   float64 `toml:"curvature"`
	Strict      bool    `toml:"strict"`
}

// RenderConfig controls rendered output.
type RenderConfig struct {
	Minimap       bool    `toml:"minimap"`
	MinimapWidth  float64 `toml:"minimap_width"`
	MinimapHeight float64 `toml:"minimap_height"`
	Background    string  `toml:"background"`
}

// CacheConfig selects the cache backend. A non-empty RedisURL wins over Dir.
type CacheConfig struct {
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a string ("24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	ic := interaction.DefaultConfig()
	return &Config{
		Viewport: ViewportConfig{
			MinZoom:    viewport.DefaultMinZoom,
			MaxZoom:    viewport.DefaultMaxZoom,
			FitPadding: viewport.DefaultFitViewPadding,
			Width:      800,
			Height:     600,
		},
		Nodes: NodesConfig{
			DefaultWidth:  flow.DefaultNodeWidth,
			DefaultHeight: flow.DefaultNodeHeight,
			SnapGrid:      [2]float64{ic.SnapGrid.X, ic.SnapGrid.Y},
		},
		Interaction: InteractionConfig{
			DragThreshold:    ic.NodeDragThreshold,
			SelectionMode:    string(ic.SelectionMode),
			ConnectionMode:   string(ic.ConnectionMode),
			ConnectionRadius: ic.ConnectionRadius,
		},
		Edges: EdgesConfig{
			DefaultType: geometry.EdgeTypeDefault,
			Curvature:   geometry.DefaultCurvature,
		},
		Render: RenderConfig{
			MinimapWidth:  200,
			MinimapHeight: 150,
		},
		Cache: CacheConfig{
			TTL: Duration{cache.TTLArtifact},
		},
	}
}

// Dir returns the xyflow config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config at path (the default path when empty). A missing
// file yields [Default]. Unknown keys are an error so typos do not pass
// silently.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, xerrors.New(xerrors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path (the default path when empty).
func Save(path string, cfg *Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists writes the defaults to path unless a file is already there.
// It reports whether a file was created.
func EnsureExists(path string) (bool, error) {
	if path == "" {
		path = Path()
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	return true, Save(path, Default())
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.Viewport.MinZoom <= 0 || c.Viewport.MaxZoom < c.Viewport.MinZoom {
		return xerrors.New(xerrors.ErrCodeInvalidInput,
			"viewport zoom range [%g, %g] is invalid", c.Viewport.MinZoom, c.Viewport.MaxZoom)
	}
	if c.Viewport.FitPadding < 0 {
		return xerrors.New(xerrors.ErrCodeInvalidInput, "viewport.fit_padding cannot be negative")
	}
	if c.Nodes.DefaultWidth <= 0 || c.Nodes.DefaultHeight <= 0 {
		return xerrors.New(xerrors.ErrCodeInvalidInput, "nodes default size must be positive")
	}
	if _, err := interaction.ParseSelectionMode(c.Interaction.SelectionMode); err != nil {
		return xerrors.Wrap(xerrors.ErrCodeInvalidInput, err, "interaction.selection_mode")
	}
	if _, err := interaction.ParseConnectionMode(c.Interaction.ConnectionMode); err != nil {
		return xerrors.Wrap(xerrors.ErrCodeInvalidInput, err, "interaction.connection_mode")
	}
	if !geometry.ValidEdgeType(c.Edges.DefaultType) {
		return xerrors.New(xerrors.ErrCodeInvalidEdgeType, "unknown edges.default_type %q", c.Edges.DefaultType)
	}
	if c.Render.Background != "" {
		if err := xerrors.ValidateColor(c.Render.Background); err != nil {
			return err
		}
	}
	if c.Cache.RedisURL != "" {
		if err := xerrors.ValidateRedisURL(c.Cache.RedisURL); err != nil {
			return err
		}
	}
	return nil
}

// EngineOptions converts the config to engine options. Call Validate first;
// invalid modes fall back to their defaults.
func (c *Config) EngineOptions() engine.Options {
	ic := interaction.DefaultConfig()
	ic.NodeDragThreshold = c.Interaction.DragThreshold
	if c.Interaction.ConnectionRadius > 0 {
		ic.ConnectionRadius = c.Interaction.ConnectionRadius
	}
	if m, err := interaction.ParseSelectionMode(c.Interaction.SelectionMode); err == nil {
		ic.SelectionMode = m
	}
	if m, err := interaction.ParseConnectionMode(c.Interaction.ConnectionMode); err == nil {
		ic.ConnectionMode = m
	}
	ic.PanOnScroll = c.Interaction.PanOnScroll
	ic.SelectionOnDrag = c.Interaction.SelectionOnDrag
	ic.SnapToGrid = c.Nodes.SnapToGrid
	if c.Nodes.SnapGrid[0] > 0 && c.Nodes.SnapGrid[1] > 0 {
		ic.SnapGrid = geometry.XY{X: c.Nodes.SnapGrid[0], Y: c.Nodes.SnapGrid[1]}
	}

	opts := engine.DefaultOptions()
	opts.MinZoom = c.Viewport.MinZoom
	opts.MaxZoom = c.Viewport.MaxZoom
	opts.DefaultNodeWidth = c.Nodes.DefaultWidth
	opts.DefaultNodeHeight = c.Nodes.DefaultHeight
	opts.ElevateNodesOnSelect = c.Nodes.ElevateOnSelect
	opts.StrictEdges = c.Edges.Strict
	opts.DefaultEdgeType = c.Edges.DefaultType
	opts.Curvature = c.Edges.Curvature
	opts.FitViewOptions.Padding = c.Viewport.FitPadding
	opts.Interaction = &ic
	return opts
}
