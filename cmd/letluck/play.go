package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/letluck/internal/cli"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Browse the tree and decide in the terminal",
	Long: `Opens the interactive grid. Type a tile number to open it, 'd' to let luck
decide, 'r' to replay, 'b' to go back, 'h' to go home and 'q' to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		flags := cmd.Flags()
		sessionID, _ := flags.GetString("session")
		fresh, _ := flags.GetBool("fresh")
		quiet, _ := flags.GetBool("quiet")
		plain, _ := flags.GetBool("plain")

		return cli.Play(cmd.Context(), app, cli.PlayOptions{
			SessionID: sessionID,
			Fresh:     fresh,
			Quiet:     quiet,
			Plain:     plain,
			Input:     cmd.InOrStdin(),
			Output:    cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("session", "s", "default", "Session id to open or resume")
	playCmd.Flags().Bool("fresh", false, "Start the session from home")
	playCmd.Flags().BoolP("quiet", "q", false, "Hide the banner and system messages")
	playCmd.Flags().Bool("plain", false, "Disable colors and markdown styling")

	rootCmd.RunE = playCmd.RunE
	rootCmd.Flags().AddFlagSet(playCmd.Flags())
}
