package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/letluck"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of letluck",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "letluck version %s\n", strings.TrimSpace(letluck.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
