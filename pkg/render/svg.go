package render

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"

	xerrors "github.com/MomoChenisMe/xyflow-sub001/pkg/errors"
)

// Defaults for [RenderSVG].
const (
	DefaultNodeColor     = "#ffffff"
	DefaultStrokeColor   = "#1a192b"
	DefaultEdgeColor     = "#b1b1b7"
	DefaultSelectedColor = "#555555"
	DefaultMinimapMargin = 10.0

	framePadding = 20.0
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background    string
	nodeColor     string
	edgeColor     string
	selectedColor string
	showHandles   bool
}

// WithBackground fills the canvas. Empty leaves it transparent.
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithNodeColor sets the fill of nodes without a data color.
func WithNodeColor(c string) SVGOption { return func(r *svgRenderer) { r.nodeColor = c } }

// WithEdgeColor sets the stroke of unselected edges.
func WithEdgeColor(c string) SVGOption { return func(r *svgRenderer) { r.edgeColor = c } }

// WithHandles draws handle anchors.
func WithHandles() SVGOption { return func(r *svgRenderer) { r.showHandles = true } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		nodeColor:     DefaultNodeColor,
		edgeColor:     DefaultEdgeColor,
		selectedColor: DefaultSelectedColor,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws a scene. A scene without a container size is framed on its
// node bounds at zoom 1.
func RenderSVG(s graph.Scene, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	width, height, vp := frame(s)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%.0f" height="%.0f">`+"\n",
		num(width), num(height), width, height)
	r.renderDefs(&buf)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect class="xy-background" width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(r.background))
	}

	fmt.Fprintf(&buf, `  <g class="xy-viewport" transform="translate(%s,%s) scale(%s)">`+"\n", num(vp.X), num(vp.Y), num(vp.Zoom))
	r.renderEdges(&buf, s.Edges)
	r.renderNodes(&buf, s.Nodes)
	buf.WriteString("  </g>\n")

	if s.Minimap != nil {
		r.renderMinimap(&buf, *s.Minimap, width, height)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func frame(s graph.Scene) (width, height float64, vp geometry.Viewport) {
	if s.Width > 0 && s.Height > 0 {
		vp = s.Viewport
		if vp.Zoom == 0 {
			vp.Zoom = 1
		}
		return s.Width, s.Height, vp
	}
	b := s.Bounds
	return b.Width + 2*framePadding, b.Height + 2*framePadding,
		geometry.Viewport{X: framePadding - b.X, Y: framePadding - b.Y, Zoom: 1}
}

func (r *svgRenderer) renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	for _, m := range []struct{ id, color string }{
		{"xy-arrow", r.edgeColor},
		{"xy-arrow-selected", r.selectedColor},
	} {
		fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="6" markerHeight="6" orient="auto-start-reverse">`+"\n", m.id)
		fmt.Fprintf(buf, `      <path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/>`+"\n", html.EscapeString(m.color))
		buf.WriteString("    </marker>\n")
	}
	buf.WriteString("  </defs>\n")
}

func (r *svgRenderer) renderEdges(buf *bytes.Buffer, edges []graph.SceneEdge) {
	buf.WriteString("    <g class=\"xy-edges\">\n")
	for _, e := range edges {
		class, stroke, marker := "xy-edge", r.edgeColor, "xy-arrow"
		if e.Selected {
			class, stroke, marker = class+" selected", r.selectedColor, "xy-arrow-selected"
		}
		dash := ""
		if e.Animated {
			class += " animated"
			dash = ` stroke-dasharray="5"`
		}
		fmt.Fprintf(buf, `      <path id="edge-%s" class="%s" d="%s" fill="none" stroke="%s" stroke-width="1"%s marker-end="url(#%s)"/>`+"\n",
			html.EscapeString(e.ID), class, e.Path, html.EscapeString(stroke), dash, marker)
	}
	for _, e := range edges {
		if e.Label == "" {
			continue
		}
		fmt.Fprintf(buf, `      <text class="xy-edge-label" x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="10">%s</text>`+"\n",
			num(e.LabelX), num(e.LabelY), html.EscapeString(e.Label))
	}
	buf.WriteString("    </g>\n")
}

func (r *svgRenderer) renderNodes(buf *bytes.Buffer, nodes []graph.SceneNode) {
	buf.WriteString("    <g class=\"xy-nodes\">\n")
	for _, n := range nodes {
		fill := r.nodeColor
		if n.Color != "" && xerrors.ValidateColor(n.Color) == nil {
			fill = n.Color
		}
		stroke, strokeWidth := DefaultStrokeColor, 1.0
		if n.Selected {
			stroke, strokeWidth = r.selectedColor, 2
		}
		c := n.Rect.Center()
		fmt.Fprintf(buf, `      <g id="node-%s" class="xy-node">`+"\n", html.EscapeString(n.ID))
		fmt.Fprintf(buf, `        <rect x="%s" y="%s" width="%s" height="%s" rx="3" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
			num(n.Rect.X), num(n.Rect.Y), num(n.Rect.Width), num(n.Rect.Height),
			html.EscapeString(fill), html.EscapeString(stroke), num(strokeWidth))
		fmt.Fprintf(buf, `        <text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="12">%s</text>`+"\n",
			num(c.X), num(c.Y), html.EscapeString(n.Label))
		if r.showHandles {
			for _, h := range n.Handles {
				fmt.Fprintf(buf, `        <circle class="xy-handle %s" cx="%s" cy="%s" r="3" fill="%s"/>`+"\n",
					h.Type, num(h.X), num(h.Y), DefaultStrokeColor)
			}
		}
		buf.WriteString("      </g>\n")
	}
	buf.WriteString("    </g>\n")
}

func (r *svgRenderer) renderMinimap(buf *bytes.Buffer, mm graph.SceneMinimap, width, height float64) {
	v := mm.View
	if v.Width <= 0 || v.Height <= 0 || v.ViewBox.IsEmpty() {
		return
	}
	x := width - v.Width - DefaultMinimapMargin
	y := height - v.Height - DefaultMinimapMargin
	vb := v.ViewBox
	fmt.Fprintf(buf, `  <svg class="xy-minimap" x="%s" y="%s" width="%s" height="%s" viewBox="%s %s %s %s">`+"\n",
		num(x), num(y), num(v.Width), num(v.Height), num(vb.X), num(vb.Y), num(vb.Width), num(vb.Height))
	fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" fill="#ffffff"/>`+"\n",
		num(vb.X), num(vb.Y), num(vb.Width), num(vb.Height))
	for _, n := range mm.Nodes {
		fill := "#e2e2e2"
		if n.Selected {
			fill = r.selectedColor
		}
		fmt.Fprintf(buf, `    <rect class="xy-minimap-node" x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(n.Rect.X), num(n.Rect.Y), num(n.Rect.Width), num(n.Rect.Height), html.EscapeString(fill))
	}
	fmt.Fprintf(buf, `    <path class="xy-minimap-mask" d="%s" fill="rgba(240,240,240,0.6)" fill-rule="evenodd" stroke="%s" stroke-width="%s"/>`+"\n",
		v.MaskPath, DefaultEdgeColor, num(v.ViewScale))
	buf.WriteString("  </svg>\n")
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
