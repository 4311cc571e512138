// package repositories provides persistence layer implementations for backup history.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// DefaultListLimit caps [RunRepository.List] when no limit is given.
const DefaultListLimit = 20

const runColumns = `id, started_at, finished_at, status, user_id, dump, format, output_path,
	playlists, tracks, albums, requests, error`

// RunRepository persists [models.BackupRun] records.
type RunRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db, now: time.Now}
}

// Create inserts a new run with a generated ID. StartedAt defaults to now and Status to running.
func (r *RunRepository) Create(run *models.BackupRun) error {
	run.ID = shared.GenerateID()
	if run.StartedAt.IsZero() {
		run.StartedAt = r.now().UTC()
	}
	if run.Status == "" {
		run.Status = models.RunRunning
	}

	query := `
		INSERT INTO backup_runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID, run.StartedAt, nullTime(run.FinishedAt), string(run.Status), run.UserID, run.Dump, run.Format,
		run.OutputPath, run.Playlists, run.Tracks, run.Albums, run.Requests, run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert backup run: %w", err)
	}
	return nil
}

// Finish stores the outcome fields of a run created earlier.
func (r *RunRepository) Finish(run *models.BackupRun) error {
	if run.FinishedAt == nil {
		now := r.now().UTC()
		run.FinishedAt = &now
	}

	query := `
		UPDATE backup_runs
		SET finished_at = ?, status = ?, user_id = ?, output_path = ?,
			playlists = ?, tracks = ?, albums = ?, requests = ?, error = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		run.FinishedAt.UTC(), string(run.Status), run.UserID, run.OutputPath,
		run.Playlists, run.Tracks, run.Albums, run.Requests, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update backup run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID)
	}
	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(id string) (*models.BackupRun, error) {
	query := `SELECT ` + runColumns + ` FROM backup_runs WHERE id = ?`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query backup run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs first. A limit of 0 or less uses [DefaultListLimit].
func (r *RunRepository) List(limit int) ([]*models.BackupRun, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT ` + runColumns + ` FROM backup_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backup runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.BackupRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan backup run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating backup runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.BackupRun, error) {
	var (
		run        models.BackupRun
		status     string
		finishedAt sql.NullTime
	)

	err := s.Scan(
		&run.ID, &run.StartedAt, &finishedAt, &status, &run.UserID, &run.Dump, &run.Format, &run.OutputPath,
		&run.Playlists, &run.Tracks, &run.Albums, &run.Requests, &run.Error,
	)
	if err != nil {
		return nil, err
	}

	run.Status = models.RunStatus(status)
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
