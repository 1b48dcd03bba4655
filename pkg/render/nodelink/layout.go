package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
)

// Placement is a node placed by Graphviz, in points with y pointing up.
type Placement struct {
	CenterX float64
	CenterY float64
	Width   float64
	Height  float64
}

// Positions is the parsed result of a Graphviz layout run.
type Positions struct {
	Bounds geometry.Rect
	Nodes  map[string]Placement
}

// AutoLayout runs the Graphviz dot engine over the visible top-level nodes of
// doc and returns a copy with their positions replaced. Everything else,
// including the viewport, is kept.
func AutoLayout(ctx context.Context, doc graph.Document, opts Options) (graph.Document, error) {
	var sub graph.Document
	var index []int
	for i, n := range doc.Nodes {
		if n.Hidden || n.ParentID != "" {
			continue
		}
		sub.Nodes = append(sub.Nodes, n)
		index = append(index, i)
	}
	sub.Edges = doc.Edges
	if len(sub.Nodes) == 0 {
		return doc, nil
	}

	dot := writeDOT(sub, opts, func(i int, _ string) string { return layoutName(i) })
	out, err := run(ctx, dot, graphviz.XDOT)
	if err != nil {
		return graph.Document{}, err
	}
	pos, err := ParsePositions(out)
	if err != nil {
		return graph.Document{}, err
	}

	result := doc
	result.Nodes = append(result.Nodes[:0:0], doc.Nodes...)
	top := pos.Bounds.Y + pos.Bounds.Height
	for i, docIndex := range index {
		p, ok := pos.Nodes[layoutName(i)]
		if !ok {
			return graph.Document{}, fmt.Errorf("layout: node %q not placed", sub.Nodes[i].ID)
		}
		result.Nodes[docIndex].Position = geometry.XY{
			X: round2(p.CenterX - p.Width/2),
			Y: round2(top - p.CenterY - p.Height/2),
		}
	}
	return result, nil
}

func layoutName(i int) string { return "n" + strconv.Itoa(i) }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

var (
	bbRe       = regexp.MustCompile(`bb="([-0-9.e+]+),([-0-9.e+]+),([-0-9.e+]+),([-0-9.e+]+)"`)
	nodeStmtRe = regexp.MustCompile(`(?m)^\s*(n[0-9]+)\s*\[((?:[^\]"]|"(?:[^"\\]|\\.)*")*)\]`)
	attrRe     = regexp.MustCompile(`(\w+)=("(?:[^"\\]|\\.)*"|[^,\s\]]+)`)
)

// ParsePositions reads node placements from Graphviz dot or xdot output.
func ParsePositions(out []byte) (Positions, error) {
	text := string(bytes.ReplaceAll(out, []byte("\\\n"), nil))

	m := bbRe.FindStringSubmatch(text)
	if m == nil {
		return Positions{}, fmt.Errorf("layout: graph bounding box not found")
	}
	var bb [4]float64
	for i := range bb {
		v, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return Positions{}, fmt.Errorf("layout: parse bb: %w", err)
		}
		bb[i] = v
	}

	pos := Positions{
		Bounds: geometry.Rect{X: bb[0], Y: bb[1], Width: bb[2] - bb[0], Height: bb[3] - bb[1]},
		Nodes:  map[string]Placement{},
	}
	for _, stmt := range nodeStmtRe.FindAllStringSubmatch(text, -1) {
		attrs := map[string]string{}
		for _, a := range attrRe.FindAllStringSubmatch(stmt[2], -1) {
			attrs[a[1]] = strings.Trim(a[2], `"`)
		}
		p, err := placement(attrs)
		if err != nil {
			return Positions{}, fmt.Errorf("layout: node %s: %w", stmt[1], err)
		}
		pos.Nodes[stmt[1]] = p
	}
	return pos, nil
}

func placement(attrs map[string]string) (Placement, error) {
	xy := strings.Split(attrs["pos"], ",")
	if len(xy) < 2 {
		return Placement{}, fmt.Errorf("missing pos")
	}
	var p Placement
	var err error
	if p.CenterX, err = strconv.ParseFloat(xy[0], 64); err != nil {
		return Placement{}, err
	}
	if p.CenterY, err = strconv.ParseFloat(strings.TrimSuffix(xy[1], "!"), 64); err != nil {
		return Placement{}, err
	}
	if w, err := strconv.ParseFloat(attrs["width"], 64); err == nil {
		p.Width = w * pointsPerInch
	}
	if h, err := strconv.ParseFloat(attrs["height"], 64); err == nil {
		p.Height = h * pointsPerInch
	}
	return p, nil
}
