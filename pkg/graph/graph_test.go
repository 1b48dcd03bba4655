package graph

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"

	xerrors "github.com/MomoChenisMe/xyflow-sub001/pkg/errors"
)

func sampleDocument() Document {
	return Document{
		Nodes: []flow.Node{
			{ID: "1", Type: flow.NodeTypeInput, Position: geometry.XY{X: 250, Y: 5}, Data: map[string]any{"label": "Input"}},
			{ID: "2", Position: geometry.XY{X: 100, Y: 100}, Width: 150, Height: 40},
			{ID: "g", Type: flow.NodeTypeGroup, Position: geometry.XY{X: 400, Y: 0}, Width: 300, Height: 200},
			{ID: "3", ParentID: "g", Position: geometry.XY{X: 10, Y: 10}, Draggable: flow.Ptr(false)},
		},
		Edges: []flow.Edge{
			{ID: "e1-2", Source: "1", Target: "2", Animated: true},
			{ID: "e2-3", Source: "2", Target: "3", Type: geometry.EdgeTypeSmoothStep, Label: "to child"},
		},
		Viewport: geometry.Viewport{X: 10, Y: -20, Zoom: 1.5},
	}
}

func TestRoundTrip(t *testing.T) {
	doc := sampleDocument()

	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, doc)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.json")
	doc := sampleDocument()

	if err := WriteFile(doc, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got.Nodes) != len(doc.Nodes) || len(got.Edges) != len(doc.Edges) {
		t.Errorf("got %d nodes %d edges, want %d %d", len(got.Nodes), len(got.Edges), len(doc.Nodes), len(doc.Edges))
	}
	if got.Viewport != doc.Viewport {
		t.Errorf("viewport = %+v, want %+v", got.Viewport, doc.Viewport)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestReadDefaults(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantZoom float64
		wantErr  bool
	}{
		{"missing viewport", `{"nodes": [], "edges": []}`, 1, false},
		{"explicit zoom", `{"nodes": [], "edges": [], "viewport": {"x": 0, "y": 0, "zoom": 0.75}}`, 0.75, false},
		{"malformed", `{"nodes": [`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Read(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Read error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && doc.Viewport.Zoom != tt.wantZoom {
				t.Errorf("zoom = %v, want %v", doc.Viewport.Zoom, tt.wantZoom)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(d *Document)
		opts     ValidateOptions
		wantCode xerrors.Code
	}{
		{"valid", func(d *Document) {}, ValidateOptions{}, ""},
		{"empty node id", func(d *Document) { d.Nodes[0].ID = "" }, ValidateOptions{}, xerrors.ErrCodeInvalidDocument},
		{"duplicate node", func(d *Document) { d.Nodes[1].ID = "1" }, ValidateOptions{}, xerrors.ErrCodeDuplicateID},
		{"duplicate edge", func(d *Document) { d.Edges[1].ID = "e1-2" }, ValidateOptions{}, xerrors.ErrCodeDuplicateID},
		{"missing parent", func(d *Document) { d.Nodes[3].ParentID = "nope" }, ValidateOptions{}, xerrors.ErrCodeInvalidDocument},
		{"unknown edge type", func(d *Document) { d.Edges[0].Type = "zigzag" }, ValidateOptions{}, xerrors.ErrCodeInvalidEdgeType},
		{"dangling tolerated", func(d *Document) { d.Edges[0].Target = "9" }, ValidateOptions{}, ""},
		{"dangling strict", func(d *Document) { d.Edges[0].Target = "9" }, ValidateOptions{Strict: true}, xerrors.ErrCodeDanglingEdge},
		{"negative zoom", func(d *Document) { d.Viewport.Zoom = -1 }, ValidateOptions{}, xerrors.ErrCodeInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDocument()
			tt.mutate(&doc)
			err := Validate(doc, tt.opts)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if got := xerrors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q (err %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestValidateDanglingSentinel(t *testing.T) {
	doc := sampleDocument()
	doc.Edges[1].Source = "ghost"
	err := Validate(doc, ValidateOptions{Strict: true})
	if !errors.Is(err, ErrDanglingEdge) {
		t.Errorf("err = %v, want ErrDanglingEdge", err)
	}
}

func TestDanglingEdges(t *testing.T) {
	doc := sampleDocument()
	if got := doc.DanglingEdges(); len(got) != 0 {
		t.Errorf("DanglingEdges() = %v, want none", got)
	}
	doc.Edges = append(doc.Edges, flow.Edge{ID: "x", Source: "9", Target: "1"})
	got := doc.DanglingEdges()
	if len(got) != 1 || got[0].ID != "x" {
		t.Errorf("DanglingEdges() = %v, want [x]", got)
	}
}

func TestNodeLabel(t *testing.T) {
	tests := []struct {
		name string
		node flow.Node
		want string
	}{
		{"label", flow.Node{ID: "1", Data: map[string]any{"label": "Hello"}}, "Hello"},
		{"fallback", flow.Node{ID: "1"}, "1"},
		{"number", flow.Node{ID: "1", Data: map[string]any{"label": 42.0}}, "42"},
		{"nil", flow.Node{ID: "1", Data: map[string]any{"label": nil}}, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NodeLabel(tt.node); got != tt.want {
				t.Errorf("NodeLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSceneRoundTrip(t *testing.T) {
	s := Scene{
		Width:    800,
		Height:   600,
		Viewport: geometry.Viewport{Zoom: 1},
		Nodes:    []SceneNode{{ID: "1", Label: "A", Rect: geometry.Rect{Width: 150, Height: 36}}},
		Edges:    []SceneEdge{{ID: "e", Source: "1", Target: "1", Type: "straight", Path: "M 0,0 L 1,1"}},
		Minimap:  &SceneMinimap{Nodes: []MinimapNode{{ID: "1"}}},
	}
	data, err := MarshalScene(s)
	if err != nil {
		t.Fatalf("MarshalScene: %v", err)
	}
	got, err := UnmarshalScene(data)
	if err != nil {
		t.Fatalf("UnmarshalScene: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("scene mismatch\n got: %+v\nwant: %+v", got, s)
	}
}
