package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/promo/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
//
// A missing config file is created from the template first.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil && !r.configFixed {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	if _, err := r.database(); err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}

// SetupConfig writes config.toml from the embedded template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("✓ Wrote %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set api.base_url (or %s) to your promotion API\n", shared.EnvAPIURL)
	r.writePlain("2. Run 'promo login <name>' to start a session\n")
	return nil
}

// SetupRollback reverts the latest migration without applying pending ones first.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to roll back %s", shared.ErrNotConfirmed, r.config.Database.Path)
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}

	versions, err := shared.AppliedVersions(db)
	if err != nil {
		return err
	}
	r.logger.Info("rolled back migration", "path", r.config.Database.Path, "remaining", len(versions))
	return r.writePlain("✓ Rolled back; %d migrations remain\n", len(versions))
}
