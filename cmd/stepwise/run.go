package main

import (
	"github.com/aretw0/stepwise/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Answer the wizard interactively",
	Long: `Walks a session through the wizard on the terminal, resuming where it was left.

At any prompt:
  :back    go to the previous step
  :review  show every answer so far
  :quit    stop, keeping the session for later`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		startKey, _ := cmd.Flags().GetString("step")
		plain, _ := cmd.Flags().GetBool("plain")

		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.RunSession(cmd.Context(), app, cli.RunOptions{
			SessionID: sessionID,
			StartKey:  startKey,
			Plain:     plain,
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "default", "session id to start or resume")
	runCmd.Flags().String("step", "", "open this step instead of resuming")
	runCmd.Flags().Bool("plain", false, "disable the banner and markdown rendering")
}
