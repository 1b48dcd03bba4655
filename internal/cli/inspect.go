package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/geometry"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/pipeline"
)

// inspectCommand creates the inspect command: a read-only report of a flow.
func (c *CLI) inspectCommand() *cobra.Command {
	var edgeType string
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "inspect [flow.json]",
		Short: "Print node bounds, the fitted viewport and element tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := c.pipelineOptions(cmd, opts, edgeType)
			if err != nil {
				return err
			}
			report, err := c.buildInspectReport(cmd.Context(), args[0], resolved)
			if err != nil {
				return err
			}
			return writeInspectReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().Float64Var(&opts.Width, "width", pipeline.DefaultWidth, "container width in pixels")
	cmd.Flags().Float64Var(&opts.Height, "height", pipeline.DefaultHeight, "container height in pixels")
	cmd.Flags().BoolVar(&opts.NoFit, "no-fit", false, "report the document viewport instead of fitting")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on edges whose endpoints do not exist")
	cmd.Flags().StringVar(&edgeType, "edge-type", "", "edge type for edges without one")

	return cmd
}

// inspectReport is everything the inspect command prints.
type inspectReport struct {
	Source   string
	Doc      graph.Document
	Scene    graph.Scene
	Dangling map[string]bool
	// EdgeTypes holds the resolved type of every edge by ID.
	EdgeTypes map[string]string
}

func (c *CLI) buildInspectReport(ctx context.Context, input string, opts pipeline.Options) (inspectReport, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return inspectReport{}, err
	}
	doc, err := pipeline.Load(ctx, input)
	if err != nil {
		return inspectReport{}, err
	}
	dangling, err := pipeline.Check(doc, opts)
	if err != nil {
		return inspectReport{}, err
	}
	inst, scene := pipeline.BuildScene(doc, opts)

	r := inspectReport{
		Source:    input,
		Doc:       doc,
		Scene:     scene,
		Dangling:  make(map[string]bool, len(dangling)),
		EdgeTypes: make(map[string]string, len(doc.Edges)),
	}
	for _, id := range dangling {
		r.Dangling[id] = true
	}
	for _, e := range doc.Edges {
		r.EdgeTypes[e.ID] = inst.EdgeType(e)
	}
	return r, nil
}

var inspectHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

func writeInspectReport(w io.Writer, r inspectReport) error {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(r.Source))
	b.WriteString("\n")
	kv := func(key, value string) {
		b.WriteString(keyStyle.Render(key) + " " + StyleValue.Render(value) + "\n")
	}
	kv("Nodes", strconv.Itoa(len(r.Doc.Nodes)))
	kv("Edges", strconv.Itoa(len(r.Doc.Edges)))
	kv("Bounds", formatRect(r.Scene.Bounds))
	kv("Container", fmt.Sprintf("%s × %s", num(r.Scene.Width), num(r.Scene.Height)))
	kv("Viewport", formatViewport(r.Scene.Viewport))
	b.WriteString("\n")

	if len(r.Scene.Nodes) > 0 {
		rows := make([][]string, 0, len(r.Scene.Nodes))
		for _, n := range r.Scene.Nodes {
			rows = append(rows, []string{
				n.ID, n.Type, n.Label,
				num(n.Rect.X), num(n.Rect.Y), num(n.Rect.Width), num(n.Rect.Height),
				strconv.Itoa(n.Z), checkmark(n.Selected),
			})
		}
		b.WriteString(newTable([]string{"ID", "Type", "Label", "X", "Y", "W", "H", "Z", "Sel"}, rows).Render())
		b.WriteString("\n")
	}

	if len(r.Doc.Edges) > 0 {
		rows := make([][]string, 0, len(r.Doc.Edges))
		for _, e := range r.Doc.Edges {
			status := "ok"
			switch {
			case r.Dangling[e.ID]:
				status = "dangling"
			case e.Hidden:
				status = "hidden"
			}
			rows = append(rows, []string{
				e.ID, e.Source + " " + iconArrow + " " + e.Target, r.EdgeTypes[e.ID], e.Label, status,
			})
		}
		b.WriteString(newTable([]string{"ID", "Connection", "Type", "Label", "Status"}, rows).Render())
		b.WriteString("\n")
	}

	for _, e := range r.Doc.Edges {
		if r.Dangling[e.ID] {
			b.WriteString(styleIconWarning.Render(iconWarning) + " " +
				StyleWarning.Render(fmt.Sprintf("edge %s references a missing node", e.ID)) + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return inspectHeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func formatRect(r geometry.Rect) string {
	return fmt.Sprintf("x=%s y=%s w=%s h=%s", num(r.X), num(r.Y), num(r.Width), num(r.Height))
}

func formatViewport(vp geometry.Viewport) string {
	return fmt.Sprintf("x=%s y=%s zoom=%s", num(vp.X), num(vp.Y), num(vp.Zoom))
}

func checkmark(b bool) string {
	if b {
		return iconSuccess
	}
	return ""
}

// num formats v with at most two decimals and no trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
