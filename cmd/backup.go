package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/spotx/internal/formatter"
	"github.com/desertthunder/spotx/internal/metrics"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/repositories"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/tasks"
	"github.com/desertthunder/spotx/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Backup authorizes, reads the selected collections and writes them to the output file.
//
// Nothing is written unless every collection was read completely.
func (r *Runner) Backup(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	path, err := r.outputPath(cmd.StringArg("file"))
	if err != nil {
		return err
	}

	format, err := outputFormat(cmd.String("format"), path)
	if err != nil {
		return err
	}

	dump, err := tasks.ParseDump(cmd.String("dump"))
	if err != nil {
		return err
	}

	token, err := r.token(ctx, cmd.String("token"), config)
	if err != nil {
		return err
	}

	run := &models.BackupRun{Dump: joinDump(dump), Format: string(format), OutputPath: path}
	history := r.openHistory(config, cmd.Bool("no-history"))
	if history != nil {
		defer history.close()
		if err := history.repo.Create(run); err != nil {
			r.logger.Warn("failed to record backup run", "error", err)
			history = nil
		}
	}

	observer := metrics.NewObserver()
	started := time.Now()

	backup, err := r.runBackup(ctx, config, token, dump, observer)
	if err == nil {
		r.logger.Info("Writing file...", "path", path, "format", format)
		err = formatter.Write(backup, format, path)
	}

	finished := time.Now()
	run.Requests = observer.Requests()
	if err != nil {
		run.Fail(err, finished.UTC())
		observer.RecordRun(string(models.RunFailed), finished.Sub(started))
	} else {
		run.Succeed(backup, finished.UTC())
		observer.RecordRun(string(models.RunSucceeded), finished.Sub(started))
	}

	if history != nil {
		if ferr := history.repo.Finish(run); ferr != nil {
			r.logger.Warn("failed to record backup result", "error", ferr)
		}
	}

	if metricsFile := cmd.String("metrics-file"); metricsFile != "" {
		if merr := observer.WriteFile(metricsFile); merr != nil {
			r.logger.Warn("failed to write metrics", "error", merr)
		}
	}

	if err != nil {
		return err
	}

	return r.writePlain("%s\n", ui.Styles().OK(fmt.Sprintf("Wrote file: %s (%d playlists, %d tracks, %d albums)",
		path, run.Playlists, run.Tracks, run.Albums)))
}

func (r *Runner) runBackup(
	ctx context.Context,
	config *shared.Config,
	token *oauth2.Token,
	dump []tasks.DumpTarget,
	observer *metrics.Observer,
) (*models.Backup, error) {
	var limiter *rate.Limiter
	if config.Fetch.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.Fetch.RateLimit), 1)
	}

	fetcher, err := services.NewFetcher(services.FetcherOpts{
		BaseURL:    config.Spotify.APIURL,
		Token:      token,
		HTTPClient: r.httpClient,
		Budget:     services.RetryBudget{MaxAttempts: config.Fetch.MaxAttempts, Delay: config.Fetch.RetryDelay.Std()},
		Limiter:    limiter,
		Observer:   services.MultiObserver{services.NewLogObserver(shared.WithLogger(r.logger, "dump", joinDump(dump))), observer},
		Timeout:    config.Fetch.Timeout.Std(),
	})
	if err != nil {
		return nil, err
	}

	engine := tasks.NewBackupEngine(services.NewSpotifyService(fetcher).WithPageSize(config.Fetch.PageSize))

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Info(ui.FormatProgress(update))
		}
	}()

	backup, err := engine.Run(ctx, tasks.BackupOpts{Dump: dump}, progress)
	close(progress)
	wg.Wait()

	return backup, err
}

// token returns the access token from --token or SPOTIFY_TOKEN, or runs the browser authorization.
func (r *Runner) token(ctx context.Context, flagToken string, config *shared.Config) (*oauth2.Token, error) {
	if flagToken != "" {
		return &oauth2.Token{AccessToken: flagToken, TokenType: "Bearer"}, nil
	}

	captured, err := r.authorize(ctx, config)
	if err != nil {
		return nil, err
	}
	return captured.OAuth2(), nil
}

// outputPath returns the file argument, prompting for one on an interactive terminal.
func (r *Runner) outputPath(arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	if !r.interactive() {
		return "", fmt.Errorf("%w: output file", shared.ErrMissingArgument)
	}
	return shared.PromptFilename(r.input, r.output)
}

// outputFormat resolves --format, falling back to the file extension and then to txt.
func outputFormat(flag, path string) (formatter.Format, error) {
	if flag != "" {
		return formatter.ParseFormat(flag)
	}
	if ext := shared.FormatFromPath(path); ext != "" {
		if f, err := formatter.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return formatter.Text, nil
}

func joinDump(dump []tasks.DumpTarget) string {
	names := make([]string, len(dump))
	for i, d := range dump {
		names[i] = string(d)
	}
	return strings.Join(names, ",")
}

type historyStore struct {
	repo  *repositories.RunRepository
	close func() error
}

// openHistory opens the run history database. Failures are logged and disable history for the run.
func (r *Runner) openHistory(config *shared.Config, disabled bool) *historyStore {
	if disabled || config.Database.Path == "" {
		return nil
	}

	db, err := shared.OpenMigrated(config.Database.Path)
	if err != nil {
		r.logger.Warn("backup history disabled", "error", err)
		return nil
	}
	return &historyStore{repo: repositories.NewRunRepository(db), close: db.Close}
}
