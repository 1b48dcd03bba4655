package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/MomoChenisMe/xyflow-sub001/internal/config"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/cache"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/engine"
	xerrors "github.com/MomoChenisMe/xyflow-sub001/pkg/errors"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "xyflow"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath  string
	metricsAddr string
	cfg         *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// settings returns the loaded configuration, or the defaults before the root
// command has loaded one.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	r.ArtifactTTL = c.settings().Cache.TTL.Duration
	return r, nil
}

// newCache picks the backend: Redis when configured, otherwise the file cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.settings()
	if cfg.Cache.RedisURL != "" {
		c.Logger.Debug("using redis cache")
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/xyflow/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions layers the configuration under opts. Flags the user set
// explicitly win over the config file.
func (c *CLI) pipelineOptions(cmd *cobra.Command, opts pipeline.Options, edgeType string) (pipeline.Options, error) {
	cfg := c.settings()
	flags := cmd.Flags()
	if !flags.Changed("width") {
		opts.Width = cfg.Viewport.Width
	}
	if !flags.Changed("height") {
		opts.Height = cfg.Viewport.Height
	}
	if !flags.Changed("minimap") {
		opts.Minimap = cfg.Render.Minimap
	}
	if !flags.Changed("background") {
		opts.Background = cfg.Render.Background
	}
	if !flags.Changed("strict") {
		opts.Strict = cfg.Edges.Strict
	}
	opts.MinimapWidth = cfg.Render.MinimapWidth
	opts.MinimapHeight = cfg.Render.MinimapHeight

	eo := c.engineOptions()
	if edgeType != "" {
		if !geometry.ValidEdgeType(edgeType) {
			return opts, xerrors.New(xerrors.ErrCodeInvalidEdgeType,
				"unknown edge type %q (must be one of: %s)", edgeType, strings.Join(geometry.EdgeTypes, ", "))
		}
		eo.DefaultEdgeType = edgeType
	}
	opts.Engine = &eo
	opts.Logger = c.Logger
	return opts, nil
}

// engineOptions returns the configured engine options with the CLI logger.
func (c *CLI) engineOptions() engine.Options {
	eo := c.settings().EngineOptions()
	eo.Logger = c.Logger
	return eo
}
