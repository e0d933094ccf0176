package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/helixir/reference-dedup-service/internal/config"
	"github.com/helixir/reference-dedup-service/internal/observability"
)

func newRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "dedup",
		Short:         "Deduplicate, filter and list bibliographic record files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newCleanCommand(&verbose))
	rootCmd.AddCommand(newFilterCommand(&verbose))
	rootCmd.AddCommand(newListCommand(&verbose))

	return rootCmd
}

// loadEnvironment loads configuration and builds a console logger for CLI use.
func loadEnvironment(verbose bool) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.RFC3339,
	})
	return cfg, logger, nil
}
