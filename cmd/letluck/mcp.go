package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/letluck/internal/cli"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes sessions as MCP tools so AI agents can browse the tree and let luck decide.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")
		baseURL, _ := cmd.Flags().GetString("base-url")
		return cli.ServeMCP(cmd.Context(), app, transport, addr, baseURL)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8081", "Address to listen on (only for SSE)")
	mcpCmd.Flags().String("base-url", "http://localhost:8081", "Public base URL (only for SSE)")
}
