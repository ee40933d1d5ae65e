package main

import (
	"os"

	"github.com/aretw0/mcpbridge"
	"github.com/aretw0/mcpbridge/internal/cli"
	"github.com/aretw0/mcpbridge/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the API and its MCP tools over HTTP",
	Long: `Starts an HTTP server exposing the API routes natively, the MCP tools on /mcp
(streamable HTTP), the OpenAPI document on /openapi.json and /openapi.yaml,
Prometheus metrics on /metrics and a liveness probe on /healthz.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Stop()

		app, err := buildApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if tui.IsTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr, mcpbridge.Version)
		}
		app.Logger.Info("Starting mcpbridge server", "addr", app.Config.Server.Addr, "group", app.Bridge.Group().Name)

		if err := app.Bridge.ListenAndServe(ctx, app.Config.Server.Addr); err != nil {
			return err
		}
		app.Logger.Info("mcpbridge server stopped gracefully", "signal", ctx.Signal())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
