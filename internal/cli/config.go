package cli

import (
	"fmt"
	"net/url"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/MomoChenisMe/xyflow-sub001/internal/config"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration unless a file exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.resolvedConfigPath()
			created, err := config.EnsureExists(path)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			if created {
				printSuccess("Created config")
			} else {
				printInfo("Config already exists")
			}
			printFile(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.resolvedConfigPath())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *c.settings()
			cfg.Cache.RedisURL = redactURL(cfg.Cache.RedisURL)
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	})

	return cmd
}

func (c *CLI) resolvedConfigPath() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.Path()
}

// redactURL masks the password of a URL. Unparseable input is returned as is.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
