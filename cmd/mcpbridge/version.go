package main

import (
	"fmt"

	"github.com/aretw0/mcpbridge"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mcpbridge",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mcpbridge version %s\n", mcpbridge.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
