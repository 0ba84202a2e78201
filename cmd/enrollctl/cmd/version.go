package cmd

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		banner := figure.NewFigure("enrollctl", "cybermedium", true)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), banner.String())
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "enrollctl", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
