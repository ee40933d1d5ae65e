package main

import (
	"fmt"
	"os"

	"github.com/aretw0/mcpbridge/pkg/openapi"
	"github.com/spf13/cobra"
)

var openapiCmd = &cobra.Command{
	Use:   "openapi",
	Short: "Print the OpenAPI document of the exposed API version",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		app, err := buildApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		doc, err := app.Bridge.OpenAPI()
		if err != nil {
			return err
		}

		var data []byte
		switch format {
		case "json":
			data, err = doc.MarshalJSON()
			data = append(data, '\n')
		case "yaml":
			data, err = openapi.MarshalYAML(doc)
		default:
			return fmt.Errorf("unknown format %q", format)
		}
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(openapiCmd)
	openapiCmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
}
