package ui

import (
	"fmt"
	"time"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/tasks"
)

// FormatProgress renders a progress update as a single status line.
//
// Updates with a step counter are prefixed with [step/total].
func FormatProgress(u tasks.ProgressUpdate) string {
	switch {
	case u.Phase == tasks.Complete:
		return styles.OK(u.Message)
	case u.Total > 0 && u.Phase == tasks.FetchPlaylistTracks:
		return fmt.Sprintf("%s %s", styles.Help(fmt.Sprintf("[%d/%d]", u.Step, u.Total)), u.Message)
	default:
		return u.Message
	}
}

// FormatRun renders one history entry.
func FormatRun(r *models.BackupRun) string {
	line := fmt.Sprintf("%s  %-9s  %s  %d playlists, %d tracks, %d albums",
		r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status, r.OutputPath, r.Playlists, r.Tracks, r.Albums)
	if d := r.Duration(); d > 0 {
		line += "  " + styles.Help(d.Round(time.Second).String())
	}

	switch r.Status {
	case models.RunSucceeded:
		return styles.OK(line)
	case models.RunFailed:
		return styles.Err(line + "  " + r.Error)
	default:
		return styles.Warn(line)
	}
}
