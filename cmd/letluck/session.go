package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect, and remove sessions kept by the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		sessions, err := app.Manager().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Sessions:")
		for _, s := range sessions {
			fmt.Fprintln(out, "- "+s)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the stored state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Manager().Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		failed := 0
		for _, id := range args {
			if err := app.Manager().Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d session(s) could not be removed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}
