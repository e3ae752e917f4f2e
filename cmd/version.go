package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/riemax-project/riemax/pkg/settings"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		v := settings.VersionInformation
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, built %s, %s)\n",
			settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
