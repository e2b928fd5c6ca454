package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Manage the anti-repeat history",
}

var recentLsCmd = &cobra.Command{
	Use:   "ls [leaf]",
	Short: "List recent picks per leaf, most recent first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		history := app.Recency().Snapshot(cmd.Context())
		if len(args) == 1 {
			history = map[string][]string{args[0]: history[args[0]]}
		}
		leaves := make([]string, 0, len(history))
		for leaf, ids := range history {
			if len(ids) > 0 {
				leaves = append(leaves, leaf)
			}
		}
		sort.Strings(leaves)

		out := cmd.OutOrStdout()
		if len(leaves) == 0 {
			fmt.Fprintln(out, "No recent picks.")
			return nil
		}
		for _, leaf := range leaves {
			fmt.Fprintf(out, "%s: %s\n", leaf, strings.Join(history[leaf], ", "))
		}
		return nil
	},
}

var recentClearCmd = &cobra.Command{
	Use:   "clear [leaf]...",
	Short: "Forget recent picks of some leaves, or of all with --all",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all == (len(args) > 0) {
			return fmt.Errorf("pass leaf ids or --all")
		}
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		history := app.Recency()
		leaves := args
		if all {
			for leaf := range history.Snapshot(cmd.Context()) {
				leaves = append(leaves, leaf)
			}
		}
		for _, leaf := range leaves {
			history.Clear(cmd.Context(), leaf)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared history of %d leaf(s)\n", len(leaves))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recentCmd)
	recentCmd.AddCommand(recentLsCmd)
	recentCmd.AddCommand(recentClearCmd)

	recentClearCmd.Flags().Bool("all", false, "Clear every leaf")
}
