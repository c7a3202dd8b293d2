package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/mediaranker/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase writes config.toml when it is missing, then initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err := shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
			} else {
				r.config = config
			}
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	if _, err := r.database(); err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return nil
}

// SetupStatus prints each migration with the time it was applied.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	states, err := shared.MigrationStatus(db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations: " + r.config.Database.Path)
	for _, state := range states {
		applied := "pending"
		if state.AppliedAt != nil {
			applied = state.AppliedAt.Local().Format("2006-01-02 15:04:05")
		}
		r.writePlain("%04d  %-32s %s\n", state.Version, state.Name, applied)
	}
	return nil
}

// SetupRollback reverts the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}
	r.logger.Info("rolled back latest migration", "path", r.config.Database.Path)
	return nil
}
