package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	xerrors "github.com/MomoChenisMe/xyflow-sub001/pkg/errors"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/interaction"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Viewport.MinZoom != 0.5 || cfg.Viewport.MaxZoom != 2 {
		t.Errorf("zoom range = [%v, %v]", cfg.Viewport.MinZoom, cfg.Viewport.MaxZoom)
	}
	if cfg.Nodes.DefaultWidth != 150 || cfg.Nodes.DefaultHeight != 36 {
		t.Errorf("node size = %vx%v", cfg.Nodes.DefaultWidth, cfg.Nodes.DefaultHeight)
	}
	if cfg.Interaction.SelectionMode != "partial" {
		t.Errorf("selection mode = %q", cfg.Interaction.SelectionMode)
	}
	if cfg.Edges.DefaultType != geometry.EdgeTypeDefault {
		t.Errorf("edge type = %q", cfg.Edges.DefaultType)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("cache ttl = %v", cfg.Cache.TTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if dir := Dir(); dir != "/tmp/test-xdg/xyflow" {
		t.Errorf("expected /tmp/test-xdg/xyflow, got %q", dir)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	if got, want := Path(), filepath.Join(home, ".config", "xyflow", "config.toml"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Viewport.MaxZoom = 4
	cfg.Nodes.SnapToGrid = true
	cfg.Nodes.SnapGrid = [2]float64{10, 20}
	cfg.Interaction.SelectionMode = "full"
	cfg.Edges.DefaultType = geometry.EdgeTypeSmoothStep
	cfg.Cache.TTL = Duration{90 * time.Minute}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Viewport.MaxZoom != 4 {
		t.Errorf("max zoom = %v", loaded.Viewport.MaxZoom)
	}
	if !loaded.Nodes.SnapToGrid || loaded.Nodes.SnapGrid != [2]float64{10, 20} {
		t.Errorf("snap = %v %v", loaded.Nodes.SnapToGrid, loaded.Nodes.SnapGrid)
	}
	if loaded.Interaction.SelectionMode != "full" {
		t.Errorf("selection mode = %q", loaded.Interaction.SelectionMode)
	}
	if loaded.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("ttl = %v", loaded.Cache.TTL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if cfg.Viewport.Width != 800 {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[edges]\ndefault_type = \"step\"\n\n[cache]\nttl = \"2h\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Edges.DefaultType != "step" {
		t.Errorf("default_type = %q", cfg.Edges.DefaultType)
	}
	if cfg.Cache.TTL.Duration != 2*time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Viewport.MaxZoom != 2 {
		t.Error("unset keys should keep their defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code xerrors.Code
	}{
		{"syntax", "[viewport\n", xerrors.ErrCodeInvalidInput},
		{"unknown key", "[viewport]\nzoomies = 3\n", xerrors.ErrCodeInvalidInput},
		{"bad zoom range", "[viewport]\nmin_zoom = 3.0\nmax_zoom = 1.0\n", xerrors.ErrCodeInvalidInput},
		{"bad selection mode", "[interaction]\nselection_mode = \"lasso\"\n", xerrors.ErrCodeInvalidInput},
		{"bad edge type", "[edges]\ndefault_type = \"wiggly\"\n", xerrors.ErrCodeInvalidEdgeType},
		{"bad colour", "[render]\nbackground = \"url(#x)\"\n", xerrors.ErrCodeInvalidInput},
		{"bad redis url", "[cache]\nredis_url = \"http://x\"\n", xerrors.ErrCodeInvalidInput},
		{"bad ttl", "[cache]\nttl = \"soon\"\n", xerrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !xerrors.Is(err, tt.code) {
				t.Errorf("Load error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestEnsureExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xyflow", "config.toml")

	created, err := EnsureExists(path)
	if err != nil || !created {
		t.Fatalf("EnsureExists = %v, %v", created, err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	created, err = EnsureExists(path)
	if err != nil || created {
		t.Errorf("second EnsureExists = %v, %v", created, err)
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Viewport.MinZoom = 0.25
	cfg.Viewport.FitPadding = 0.2
	cfg.Nodes.ElevateOnSelect = true
	cfg.Nodes.SnapToGrid = true
	cfg.Nodes.SnapGrid = [2]float64{25, 25}
	cfg.Interaction.ConnectionMode = "loose"
	cfg.Interaction.SelectionOnDrag = true
	cfg.Edges.Strict = true

	opts := cfg.EngineOptions()
	if opts.MinZoom != 0.25 || opts.MaxZoom != 2 {
		t.Errorf("zoom = [%v, %v]", opts.MinZoom, opts.MaxZoom)
	}
	if opts.FitViewOptions.Padding != 0.2 {
		t.Errorf("padding = %v", opts.FitViewOptions.Padding)
	}
	if !opts.ElevateNodesOnSelect || !opts.StrictEdges {
		t.Error("node and edge flags not carried over")
	}
	if opts.Interaction == nil {
		t.Fatal("interaction config missing")
	}
	ic := *opts.Interaction
	if ic.ConnectionMode != interaction.ConnectionLoose || !ic.SelectionOnDrag {
		t.Errorf("interaction = %+v", ic)
	}
	if !ic.SnapToGrid || ic.SnapGrid != (geometry.XY{X: 25, Y: 25}) {
		t.Errorf("snap = %v %v", ic.SnapToGrid, ic.SnapGrid)
	}
	if !ic.NodesDraggable || !ic.ZoomOnScroll {
		t.Error("unset interaction flags should keep their defaults")
	}
}
