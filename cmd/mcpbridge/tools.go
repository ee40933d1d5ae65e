package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/mcpbridge/internal/presentation/tui"
	"github.com/aretw0/mcpbridge/pkg/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the discovered MCP tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		app, err := buildApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return writeTools(os.Stdout, format, app.Bridge.Group().Name, app.Bridge.Tools())
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().StringP("format", "f", "markdown", "Output format: markdown, json or yaml")
}

type toolEntry struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Method       string `json:"method,omitempty"`
	Pattern      string `json:"pattern,omitempty"`
	InputSchema  any    `json:"inputSchema"`
	OutputSchema any    `json:"outputSchema"`
}

func writeTools(w io.Writer, format, group string, tools []domain.Tool) error {
	switch format {
	case "markdown", "md":
		return tui.Print(w, tui.Catalog(group, tools))
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	entries := make([]toolEntry, 0, len(tools))
	for _, t := range tools {
		entries = append(entries, toolEntry{
			Name:         t.Name,
			Description:  t.Description,
			Method:       t.Operation.Method,
			Pattern:      t.Operation.Pattern,
			InputSchema:  t.InputSchema,
			OutputSchema: t.OutputSchema,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if format == "yaml" {
		// Round trip through JSON so that the schemas keep their JSON names.
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		if data, err = yaml.Marshal(v); err != nil {
			return err
		}
	} else {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}
