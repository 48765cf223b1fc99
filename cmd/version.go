package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sdkbench version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			printJSON(cmd.OutOrStdout(), map[string]string{
				"version": Version,
				"go":      runtime.Version(),
			})
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sdkbench version %s (%s)\n", Version, runtime.Version())
	},
}
