package main

import (
	"log"
	"os"

	"github.com/aretw0/mcpbridge/internal/cli"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tools over stdio",
	Long: `Starts the bridge as an MCP server on standard input and output.
This allows AI agents (like desktop assistants) to call the API operations as tools.
Tool calls see a GET request to --base-url as their ambient request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Stop()

		app, err := buildApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		app.Logger.Info("Starting mcpbridge MCP server (stdio)", "tools", len(app.Bridge.Tools()))
		if err := app.Bridge.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("base-url", "http://localhost:8080/", "URL of the ambient request seen by tool calls")
}
