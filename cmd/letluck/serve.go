package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/letluck/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves sessions as a JSON API described by /openapi.yaml, with a server-sent
event stream per session at /sessions/{id}/events and Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		addr := app.Config().HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		return cli.Serve(cmd.Context(), app, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
