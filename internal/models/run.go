package models

import "time"

// RunStatus is the outcome of a backup run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// BackupRun is one recorded invocation of the backup command.
type BackupRun struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     RunStatus  `json:"status"`
	UserID     string     `json:"user_id,omitempty"`
	Dump       string     `json:"dump"`
	Format     string     `json:"format"`
	OutputPath string     `json:"output_path"`
	Playlists  int        `json:"playlists"`
	Tracks     int        `json:"tracks"`
	Albums     int        `json:"albums"`
	Requests   int        `json:"requests"`
	Error      string     `json:"error,omitempty"`
}

// Duration returns how long the run took, or 0 while it is still running.
func (r *BackupRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeed records a successful outcome with the counts of b.
func (r *BackupRun) Succeed(b *Backup, at time.Time) {
	r.Status = RunSucceeded
	r.FinishedAt = &at
	r.UserID = b.User.ID
	r.Playlists = len(b.Playlists)
	r.Tracks = b.TrackCount()
	r.Albums = len(b.Albums)
}

// Fail records a failed outcome.
func (r *BackupRun) Fail(err error, at time.Time) {
	r.Status = RunFailed
	r.FinishedAt = &at
	if err != nil {
		r.Error = err.Error()
	}
}
