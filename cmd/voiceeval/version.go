package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ent0n29/voiceeval/internal/httpapi"
)

// Actual version can be specified in build command.
var version = httpapi.Version

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", appName, version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
