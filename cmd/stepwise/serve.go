package main

import (
	"github.com/aretw0/stepwise/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Exposes the wizard as a JSON API over HTTP, with Prometheus metrics on /metrics.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Serve(ctx, app, cfg.Serve)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "address to listen on (default :8080)")
	serveCmd.Flags().Bool("metrics", true, "expose /metrics")
	bindFlag(serveCmd, "serve.addr", "addr", false)
	bindFlag(serveCmd, "serve.metrics", "metrics", false)
}
