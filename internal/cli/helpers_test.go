package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
)

// testDoc is two unmeasured nodes stacked vertically, joined by one edge.
// At zoom 1 with no pan, node a covers (0,0)-(150,36) and b (0,100)-(150,136).
func testDoc() graph.Document {
	return graph.Document{
		Nodes: []flow.Node{
			{ID: "a", Position: geometry.XY{X: 0, Y: 0}, Data: map[string]any{"label": "Alpha"}},
			{ID: "b", Position: geometry.XY{X: 0, Y: 100}, Data: map[string]any{"label": "Beta"}},
		},
		Edges: []flow.Edge{{ID: "a-b", Source: "a", Target: "b"}},
	}
}

func writeFlow(t *testing.T, doc graph.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flow.json")
	if err := graph.WriteFile(doc, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// runRoot executes the root command with an isolated config and cache.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.toml")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
