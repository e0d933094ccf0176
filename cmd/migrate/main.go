// Command migrate manages the dedup service's Postgres schema. It runs
// the migrations embedded in the binary by default; -dir switches to a
// directory on disk for schema work that is not compiled in yet.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/reference-dedup-service/internal/config"
	"github.com/helixir/reference-dedup-service/internal/database"
	"github.com/helixir/reference-dedup-service/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	up := flag.Bool("up", false, "Apply all pending migrations")
	down := flag.Bool("down", false, "Roll back all migrations, dropping the run and pair tables")
	steps := flag.Int("steps", 0, "Run N migration steps (positive=up, negative=down)")
	version := flag.Bool("version", false, "Print the current migration version")
	force := flag.Int("force", -1, "Force set migration version (recovers from a dirty state)")
	dir := flag.String("dir", "", "Read migrations from a directory instead of the embedded set")
	flag.Parse()

	var actions []string
	if *up {
		actions = append(actions, "-up")
	}
	if *down {
		actions = append(actions, "-down")
	}
	if *steps != 0 {
		actions = append(actions, "-steps")
	}
	if *version {
		actions = append(actions, "-version")
	}
	if *force >= 0 {
		actions = append(actions, "-force")
	}

	if len(actions) == 0 {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "\nSpecify one of: -up, -down, -steps N, -version, -force V")
		return fmt.Errorf("no action specified")
	}
	if len(actions) > 1 {
		return fmt.Errorf("specify one action at a time, got %v", actions)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		AddSource:  false,
		TimeFormat: time.RFC3339,
	})
	logger = logger.With().Str("component", "migrate").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// The -dir flag wins over migration_path from the config.
	migrationDir := cfg.Database.MigrationPath
	if *dir != "" {
		migrationDir = *dir
	}

	var migrator *database.Migrator
	if migrationDir != "" {
		logger.Info().Str("dir", migrationDir).Msg("using on-disk migrations")
		migrator, err = database.NewMigratorFromDir(db, migrationDir, logger)
	} else {
		migrator, err = database.NewMigrator(db, logger)
	}
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close migrator")
		}
	}()

	switch {
	case *up:
		if err := migrator.Up(); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	case *down:
		if err := migrator.Down(); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
	case *steps != 0:
		if err := migrator.Steps(*steps); err != nil {
			return fmt.Errorf("migrate steps: %w", err)
		}
	case *force >= 0:
		if err := migrator.Force(*force); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
	}

	reportVersion(migrator, logger)
	return nil
}

// reportVersion logs the schema version the database is at now.
func reportVersion(migrator *database.Migrator, logger zerolog.Logger) {
	v, dirty, err := migrator.Version()
	if err != nil {
		logger.Warn().Err(err).Msg("could not determine migration version")
		return
	}
	logger.Info().
		Uint("version", v).
		Bool("dirty", dirty).
		Msg("current migration version")
}
