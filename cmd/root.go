// Package cmd implements the mention CLI: aggregated search, provider
// inspection and token resolution against the local project.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/mention/internal/config"
	"github.com/nextlevelbuilder/mention/internal/engine"
)

var (
	flagConfig  string
	flagProject string
	flagVerbose bool
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mention",
		Short: "Search and resolve @-mentions across files, skills, agents and tools",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if flagVerbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.mention/config.json5)")
	cmd.PersistentFlags().StringVar(&flagProject, "project", "", "project directory (default current directory)")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(searchCmd())
	cmd.AddCommand(providersCmd())
	cmd.AddCommand(resolveCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfigPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mention", "config.json5")
}

// loadEngine builds an engine from the resolved config and CLI overrides.
// The config file is watched for the lifetime of the command so long-running
// invocations pick up provider toggles without a restart.
func loadEngine() (*engine.Engine, error) {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if flagProject != "" {
		abs, err := filepath.Abs(flagProject)
		if err != nil {
			return nil, fmt.Errorf("resolve project path: %w", err)
		}
		cfg.ProjectPath = abs
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	if cfgPath != "" {
		if err := eng.WatchConfig(cfgPath); err != nil {
			slog.Debug("config watch unavailable", "path", cfgPath, "error", err)
		}
	}
	return eng, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
