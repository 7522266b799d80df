package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepwise"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stepwise",
	// No config needed.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "stepwise version %s\n", strings.TrimSpace(stepwise.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
