package main

import (
	"github.com/aretw0/stepwise/internal/cli"
	"github.com/spf13/cobra"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Describe the wizard's steps",
	Long: `Prints the ordered steps of the wizard with their attributes.
The mermaid format outputs a flowchart; with --session it highlights the answered
steps and the step the session resumes at.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		sessionID, _ := cmd.Flags().GetString("session")

		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.DescribeSteps(cmd.Context(), app, cmd.OutOrStdout(), format, sessionID)
	},
}

func init() {
	rootCmd.AddCommand(stepsCmd)

	stepsCmd.Flags().String("format", cli.FormatText, "output format: text, json or mermaid")
	stepsCmd.Flags().String("session", "", "session to overlay on the mermaid graph")
}
