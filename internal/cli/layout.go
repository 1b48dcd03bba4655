package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/graph"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/pipeline"
)

// layoutCommand creates the layout command for auto-laying out a flow.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		fit     bool
	)
	opts := pipeline.Options{AutoLayout: true}

	cmd := &cobra.Command{
		Use:   "layout [flow.json]",
		Short: "Position nodes with Graphviz and write the flow document",
		Long: `Position the visible top-level nodes of a flow document with the Graphviz dot
engine and write the document back out. Child nodes keep their positions
relative to their parent.

With --fit, the viewport is also fitted to the laid-out nodes.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := c.pipelineOptions(cmd, opts, "")
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], resolved, output, noCache, fit)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached layouts but store new ones")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on edges whose endpoints do not exist")

	// Layout flags
	cmd.Flags().StringVar(&opts.RankDir, "rankdir", "", "layout direction: TB (default), LR, BT, RL")
	cmd.Flags().Float64Var(&opts.NodeSep, "nodesep", 0, "node separation in inches (default 0.3)")
	cmd.Flags().Float64Var(&opts.RankSep, "ranksep", 0, "rank separation in inches (default 0.5)")
	cmd.Flags().BoolVar(&fit, "fit", false, "fit the viewport to the laid-out nodes")
	cmd.Flags().Float64Var(&opts.Width, "width", pipeline.DefaultWidth, "container width for --fit")
	cmd.Flags().Float64Var(&opts.Height, "height", pipeline.DefaultHeight, "container height for --fit")

	return cmd
}

// runLayout loads the flow, lays it out and writes the document.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache, fit bool) error {
	doc, err := pipeline.Load(ctx, input)
	if err != nil {
		return err
	}
	opts.Source = input

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	laidOut, cacheHit, err := runner.Layout(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if fit {
		inst, _ := pipeline.BuildScene(laidOut, opts)
		laidOut.Viewport = inst.Viewport()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := writeDocument(outputPath, laidOut); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	if outputPath == stdoutPath {
		return nil
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(laidOut.Nodes), len(laidOut.Edges), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)
	return nil
}

// writeDocument writes doc as JSON to path, or to stdout for "-".
func writeDocument(path string, doc graph.Document) error {
	data, err := graph.Marshal(doc)
	if err != nil {
		return err
	}
	return writeOutput(path, data)
}
