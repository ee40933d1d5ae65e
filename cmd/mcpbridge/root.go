package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/mcpbridge/internal/cli"
	"github.com/aretw0/mcpbridge/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mcpbridge",
	Short: "mcpbridge exposes a Go web API as Model Context Protocol tools",
	Long: `mcpbridge discovers the operations of an API description, turns each one into
an MCP tool and serves them over stdio or streamable HTTP, next to the API itself.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("group", "", "API version to expose (default: the last one)")
}

// loadConfig reads --config and applies the flags the user set on top of it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("group") {
		cfg.API.Group, _ = flags.GetString("group")
	}
	if f := flags.Lookup("addr"); f != nil && f.Changed {
		cfg.Server.Addr = f.Value.String()
	}
	if f := flags.Lookup("base-url"); f != nil && f.Changed {
		cfg.Server.BaseURL = f.Value.String()
	}
	return cfg, cfg.Validate()
}

// buildApp loads the configuration and builds the bridge. Logs go to stderr so
// that stdout stays free for JSON-RPC and command output.
func buildApp(ctx context.Context, cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	return cli.Build(ctx, cfg, logger)
}
