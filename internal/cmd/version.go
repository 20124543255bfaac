package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sizely/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "sizely "+version.GetFullVersionInfo())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
