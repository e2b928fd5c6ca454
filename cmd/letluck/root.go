package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/letluck"
	"github.com/aretw0/letluck/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "letluck",
	Short: "Let luck decide what to eat, watch or do",
	Long: `letluck walks a tree of categories down to a pool of choices and lets luck
pick one, avoiding what it picked recently.

Configuration is read from letluck.yaml when present. Flags override it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Config file (default letluck.yaml if present)")
	flags.String("tree", "", "YAML/JSON tree file")
	flags.String("content", "", "Loam content directory (one document per node)")
	flags.String("store", "", "Session backend: file, redis or memory")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
	flags.Bool("debug", false, "Shortcut for --log-level debug")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (letluck.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := letluck.LoadConfig(path)
	if err != nil {
		return cfg, err
	}

	override := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	override("tree", &cfg.Tree)
	override("content", &cfg.Content)
	override("store", &cfg.Store.Backend)
	override("log-level", &cfg.Log.Level)
	override("log-format", &cfg.Log.Format)
	return cfg, cfg.Validate()
}

// loadApp builds the application from config and flags.
func loadApp(cmd *cobra.Command) (*letluck.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(os.Stderr, cfg.Log, debug)
	if err != nil {
		return nil, err
	}
	return letluck.New(cfg, letluck.WithLogger(logger))
}
