package main

import (
	"github.com/aretw0/stepwise/internal/cli"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts Stepwise as an MCP Server so AI agents can fill in the wizard through tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.ServeMCP(ctx, app, cfg.MCP)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 0, "Port to listen on (only for SSE)")
	bindFlag(mcpCmd, "mcp.transport", "transport", false)
	bindFlag(mcpCmd, "mcp.port", "port", false)
}
