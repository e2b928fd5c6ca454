package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/letluck/internal/presentation/graph"
	loamAdapter "github.com/aretw0/letluck/pkg/adapters/loam"
	"github.com/aretw0/letluck/pkg/tree"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Inspect the category tree",
}

var treeValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the tree for dead ends, dangling children and cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		issues := tree.Validate(app.Loader())
		out := cmd.OutOrStdout()
		for _, issue := range issues {
			fmt.Fprintln(out, "- "+issue.String())
		}
		if err := issues.Err(); err != nil {
			return fmt.Errorf("validation failed: %d issue(s)", len(issues))
		}
		fmt.Fprintln(out, "Tree is valid! ✅")
		return nil
	},
}

var treeGraphCmd = &cobra.Command{
	Use:   "graph [category]",
	Short: "Export a Mermaid flowchart of one category (or all)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		loader := app.Loader()
		var overlay *graph.GraphOverlay
		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			state, err := app.Manager().Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("failed to load session '%s': %w", sessionID, err)
			}
			overlay = graph.OverlayFromState(state)
		}

		ids := args
		if len(ids) == 0 {
			for _, c := range loader.Categories() {
				ids = append(ids, c.ID)
			}
		}
		for _, id := range ids {
			rootID := loader.RootID(id)
			if rootID == "" {
				return fmt.Errorf("unknown category %q", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%%%% %s\n", id)
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(rootID, graph.Reachable(loader, id), overlay))
		}
		return nil
	},
}

var treeExportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the tree as a Loam content directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		src, ok := app.Loader().(interface{ Tree() *tree.Tree })
		if !ok {
			return fmt.Errorf("tree source cannot be exported")
		}
		if err := loamAdapter.ExportDir(cmd.Context(), args[0], src.Tree()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d nodes to %s\n", src.Tree().Size(), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.AddCommand(treeValidateCmd)
	treeCmd.AddCommand(treeGraphCmd)
	treeCmd.AddCommand(treeExportCmd)

	treeGraphCmd.Flags().StringP("session", "s", "", "Highlight the path of a stored session")
}
