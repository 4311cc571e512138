package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing, then initializes the database and runs migrations.
//
// With --reset every recorded backup run is dropped.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("%s\n", ui.Styles().OK("Created "+configPath))
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := shared.OpenMigrated(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("reset") {
		r.logger.Warn("dropping backup history", "path", config.Database.Path)
		if err := shared.ResetMigrations(db); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
	}

	r.writePlain("%s\n", ui.Styles().OK("Database ready at "+config.Database.Path))
	r.writePlain("Loopback listener: %s\n", config.Server.Addr())
	return r.writePlain("Redirect URI to register with Spotify: %s\n", config.Server.RedirectURI())
}
