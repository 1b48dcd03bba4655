package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/flow"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
)

// Rank directions.
const (
	RankTB = "TB"
	RankLR = "LR"
	RankBT = "BT"
	RankRL = "RL"
)

// pointsPerInch converts Graphviz node sizes to flow units.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// RankDir is the Graphviz rankdir. Empty means TB.
	RankDir string
	// NodeSep and RankSep are in inches. Zero uses 0.3 and 0.5.
	NodeSep float64
	RankSep float64
}

func (o Options) withDefaults() Options {
	if o.RankDir == "" {
		o.RankDir = RankTB
	}
	if o.NodeSep == 0 {
		o.NodeSep = 0.3
	}
	if o.RankSep == 0 {
		o.RankSep = 0.5
	}
	return o
}

// ToDOT converts a flow document to Graphviz DOT. Nodes keep their measured
// or default size as fixed box dimensions; hidden nodes and edges, and edges
// with a missing endpoint, are left out.
func ToDOT(doc graph.Document, opts Options) string {
	return writeDOT(doc, opts, func(_ int, id string) string { return strconv.Quote(id) })
}

func writeDOT(doc graph.Document, opts Options, name func(i int, id string) string) string {
	opts = opts.withDefaults()
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.RankDir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=12];\n")
	fmt.Fprintf(&buf, "  ranksep=%s;\n", strconv.FormatFloat(opts.RankSep, 'f', -1, 64))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", strconv.FormatFloat(opts.NodeSep, 'f', -1, 64))
	buf.WriteString("\n")

	names := make(map[string]string, len(doc.Nodes))
	for i, n := range doc.Nodes {
		if n.Hidden {
			continue
		}
		names[n.ID] = name(i, n.ID)
		w, h := nodeSize(n)
		fmt.Fprintf(&buf, "  %s [label=%q, width=%s, height=%s];\n",
			names[n.ID], graph.NodeLabel(n), inches(w), inches(h))
	}

	buf.WriteString("\n")
	for _, e := range doc.Edges {
		src, okS := names[e.Source]
		dst, okT := names[e.Target]
		if e.Hidden || !okS || !okT {
			continue
		}
		if e.Label != "" {
			fmt.Fprintf(&buf, "  %s -> %s [label=%q];\n", src, dst, e.Label)
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", src, dst)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeSize(n flow.Node) (w, h float64) {
	if n.Measured() {
		return n.Width, n.Height
	}
	return flow.DefaultNodeWidth, flow.DefaultNodeHeight
}

func inches(v float64) string {
	return strconv.FormatFloat(v/pointsPerInch, 'f', 4, 64)
}

// RenderSVG renders DOT source to SVG using Graphviz.
// Returns the SVG bytes ready for display or conversion with render.ToPDF
// or render.ToPNG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := run(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

func run(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the SVG scales from its origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
