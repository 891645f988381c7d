package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set from main via Execute.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(ui.Out, "dokploy-deploy %s (commit %s, built %s)\n", buildVersion, buildCommit, buildDate)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
