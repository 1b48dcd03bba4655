package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/engine"
	xerrors "github.com/MomoChenisMe/xyflow-sub001/pkg/errors"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/interaction"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.toml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadReplayScript(t *testing.T) {
	path := writeScript(t, `
width = 640
fit = true

[[step]]
action = "drag"
x = 75
y = 18
to_x = 175
to_y = 18

[[step]]
action = "key"
key = "Delete"
shift = true
`)
	s, err := loadReplayScript(path)
	if err != nil {
		t.Fatalf("loadReplayScript: %v", err)
	}
	if s.Width != 640 || !s.Fit {
		t.Errorf("header = %+v", s)
	}
	if len(s.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(s.Steps))
	}
	if s.Steps[0].ToX != 175 || s.Steps[1].Key != "Delete" || !s.Steps[1].Shift {
		t.Errorf("steps = %+v", s.Steps)
	}
}

func TestLoadReplayScriptErrors(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{"unknown key", "[[step]]\naction = \"click\"\nspeed = 3\n", "unknown keys"},
		{"unknown action", "[[step]]\naction = \"teleport\"\n", "teleport"},
		{"key without key", "[[step]]\naction = \"key\"\n", "step 1"},
		{"bad button", "[[step]]\naction = \"down\"\nbutton = \"thumb\"\n", "thumb"},
		{"syntax", "[[step]\n", "parse script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadReplayScript(writeScript(t, tt.src))
			if !xerrors.Is(err, xerrors.ErrCodeInvalidInput) {
				t.Fatalf("err = %v, want INVALID_INPUT", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestParseButton(t *testing.T) {
	tests := []struct {
		in   string
		want interaction.Button
	}{
		{"", interaction.ButtonPrimary},
		{"Left", interaction.ButtonPrimary},
		{"middle", interaction.ButtonMiddle},
		{"right", interaction.ButtonSecondary},
	}
	for _, tt := range tests {
		got, err := parseButton(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseButton(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func newTestInstance() *engine.Instance {
	return newViewInstance(testDoc(), engine.DefaultOptions())
}

func TestReplayDragMovesNode(t *testing.T) {
	inst := newTestInstance()
	res := replay(inst, replayScript{Steps: []replayStep{
		{Action: actionDrag, X: 75, Y: 18, ToX: 175, ToY: 18},
	}})

	a, ok := inst.Node("a")
	if !ok {
		t.Fatal("node a missing")
	}
	if a.Position.X != 100 || a.Position.Y != 0 {
		t.Errorf("a.Position = %+v, want (100, 0)", a.Position)
	}
	if res.State != interaction.Idle {
		t.Errorf("state = %s, want idle", res.State)
	}
	if res.Events[engine.EventNodes] == 0 {
		t.Error("expected node events from the drag")
	}
}

func TestReplayClickAndDelete(t *testing.T) {
	inst := newTestInstance()
	replay(inst, replayScript{Steps: []replayStep{
		{Action: actionClick, X: 75, Y: 118},
		{Action: actionKey, Key: interaction.KeyDelete},
	}})

	if _, ok := inst.Node("b"); ok {
		t.Error("node b should be deleted")
	}
	if _, ok := inst.Node("a"); !ok {
		t.Error("node a should survive")
	}
	if n := len(inst.Edges()); n != 0 {
		t.Errorf("got %d edges, want connected edge removed", n)
	}
}

func TestReplayWheelAndViewportSteps(t *testing.T) {
	inst := newTestInstance()
	res := replay(inst, replayScript{Steps: []replayStep{
		{Action: actionWheel, X: 400, Y: 300, DY: -100},
	}})
	if z := inst.Viewport().Zoom; z <= 1 {
		t.Errorf("zoom after wheel up = %v, want > 1", z)
	}
	if res.Events[engine.EventViewport] == 0 {
		t.Error("expected a viewport event")
	}

	before := inst.Viewport()
	replay(inst, replayScript{Steps: []replayStep{{Action: actionPan, DX: 10, DY: -5}}})
	after := inst.Viewport()
	if after.X != before.X+10 || after.Y != before.Y-5 {
		t.Errorf("pan moved viewport from %+v to %+v", before, after)
	}
}

func TestRunReplayWritesDocument(t *testing.T) {
	input := writeFlow(t, testDoc())
	script := writeScript(t, `
[[step]]
action = "click"
x = 75
y = 18
`)
	out := filepath.Join(t.TempDir(), "out.json")
	if _, err := runRoot(t, "replay", input, script, "-o", out); err != nil {
		t.Fatalf("replay: %v", err)
	}
	doc, err := graph.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var selected []string
	for _, n := range doc.Nodes {
		if n.Selected {
			selected = append(selected, n.ID)
		}
	}
	if len(selected) != 1 || selected[0] != "a" {
		t.Errorf("selected = %v, want [a]", selected)
	}
}

func TestFormatEventCounts(t *testing.T) {
	if got := formatEventCounts(nil); got != "none" {
		t.Errorf("formatEventCounts(nil) = %q", got)
	}
	got := formatEventCounts(map[engine.EventKind]int{engine.EventViewport: 2, engine.EventNodes: 1})
	if !strings.HasPrefix(got, "1 ") || !strings.Contains(got, "2 ") {
		t.Errorf("formatEventCounts = %q", got)
	}
}
