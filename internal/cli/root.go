package cli

import (
	"github.com/spf13/cobra"

	"github.com/MomoChenisMe/xyflow-sub001/internal/config"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent pre-run loads the config file, attaches the logger to the
// command context and starts the metrics endpoint when --metrics-addr is set.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "xyflow renders and explores node-based flow diagrams",
		Long: `xyflow is a CLI for node-based flow diagrams: it renders flow documents to
SVG, PNG and PDF, lays them out with Graphviz, replays scripted gestures
against them and opens them in an interactive terminal viewer.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg

			ctx := withLogger(cmd.Context(), c.Logger)
			cmd.SetContext(ctx)

			if c.metricsAddr != "" {
				if _, err := c.startMetrics(ctx, c.metricsAddr); err != nil {
					return err
				}
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")
	root.PersistentFlags().StringVar(&c.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
