package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "0.1.0" // set at build time with -ldflags "-X distress/cmd/distress/cmd.version=..."

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "distress v%s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
