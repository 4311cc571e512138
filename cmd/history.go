package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotx/internal/repositories"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/ui"
	"github.com/urfave/cli/v3"
)

// History lists recent backup runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if config.Database.Path == "" {
		return fmt.Errorf("%w: database path", shared.ErrMissingConfig)
	}

	db, err := shared.OpenMigrated(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		return r.writePlain("%s\n", ui.Styles().Help("No backups recorded yet"))
	}

	r.writePlain("%s\n", ui.Styles().Title("Recent backups"))
	for _, run := range runs {
		if err := r.writePlain("%s\n", ui.FormatRun(run)); err != nil {
			return err
		}
	}
	return nil
}
