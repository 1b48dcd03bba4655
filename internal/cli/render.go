package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MomoChenisMe/xyflow-sub001/pkg/pipeline"
)

// renderCommand creates the render command: flow document in, artifacts out.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		edgeType   string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [flow.json]",
		Short: "Render a flow document to SVG, PNG, PDF, scene JSON or DOT",
		Long: `Render a flow document.

Nodes without a measured size get the configured default size, the viewport is
fitted to the nodes (unless --no-fit) and the resulting scene is written in the
requested formats. With --auto-layout, node positions are first replaced by a
Graphviz dot layout.

Layouts and rendered artifacts are cached locally (or in Redis when
cache.redis_url is configured).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = pipeline.ParseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			resolved, err := c.pipelineOptions(cmd, opts, edgeType)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], resolved, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results but store new ones")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on edges whose endpoints do not exist")

	// Layout flags
	cmd.Flags().BoolVar(&opts.AutoLayout, "auto-layout", false, "replace node positions with a Graphviz layout")
	cmd.Flags().StringVar(&opts.RankDir, "rankdir", "", "auto-layout direction: TB (default), LR, BT, RL")
	cmd.Flags().Float64Var(&opts.NodeSep, "nodesep", 0, "auto-layout node separation in inches (default 0.3)")
	cmd.Flags().Float64Var(&opts.RankSep, "ranksep", 0, "auto-layout rank separation in inches (default 0.5)")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", pipeline.FormatSVG, "output format(s): svg, png, pdf, json, dot (comma-separated)")
	cmd.Flags().Float64Var(&opts.Width, "width", pipeline.DefaultWidth, "container width in pixels")
	cmd.Flags().Float64Var(&opts.Height, "height", pipeline.DefaultHeight, "container height in pixels")
	cmd.Flags().BoolVar(&opts.NoFit, "no-fit", false, "keep the document viewport instead of fitting the nodes")
	cmd.Flags().BoolVar(&opts.Minimap, "minimap", false, "draw a minimap overlay")
	cmd.Flags().StringVar(&opts.Background, "background", "", "background color (e.g. #ffffff)")
	cmd.Flags().BoolVar(&opts.Handles, "handles", false, "draw connection handles")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultPNGScale, "PNG scale factor")
	cmd.Flags().StringVar(&edgeType, "edge-type", "", "edge type for edges without one: default, straight, step, smoothstep, simplebezier")

	return cmd
}

// runRender executes the pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+filepath.Base(input)+"...")
	spinner.Start()

	result, err := runner.Run(ctx, input, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, input, output)
	if err != nil {
		return err
	}
	if output == stdoutPath {
		return nil
	}

	printSuccess("Rendered %s", input)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	if n := result.Stats.DanglingEdges; n > 0 {
		printWarning("%d dangling edge(s) ignored", n)
	}
	return nil
}

// =============================================================================
// Output Paths
// =============================================================================

// stdoutPath as an output path writes a single artifact to standard output.
const stdoutPath = "-"

// artifactExt returns the file extension for a format. Scene JSON gets a
// compound extension so it never overwrites the input document.
func artifactExt(format string) string {
	if format == pipeline.FormatJSON {
		return ".scene.json"
	}
	return "." + format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	if strings.HasSuffix(output, ".scene.json") {
		return strings.TrimSuffix(output, ".scene.json")
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// artifactPaths maps each format to the file it is written to. A single
// format with an explicit output uses that path as-is.
func artifactPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + artifactExt(f)
	}
	return paths
}

// writeArtifacts writes every requested artifact and returns the paths in
// format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	if output == stdoutPath && len(formats) != 1 {
		return nil, fmt.Errorf("writing to stdout needs exactly one format, got %d", len(formats))
	}
	targets := artifactPaths(formats, input, output)

	var written []string
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := targets[f]
		if err := writeOutput(path, data); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// writeOutput writes data to path, or to stdout for "-".
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}

// openOutput returns a writer for path; "-" means stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == stdoutPath {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
