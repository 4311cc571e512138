// Backup orchestration over a [services.Library].
//
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
)

// LikedSongsName is the name of the playlist holding the user's liked songs.
const LikedSongsName = "Liked Songs"

// DumpTarget selects a collection to include in a backup.
type DumpTarget string

const (
	DumpLiked     DumpTarget = "liked"
	DumpAlbums    DumpTarget = "albums"
	DumpPlaylists DumpTarget = "playlists"
)

// DefaultDump is used when no targets are given.
var DefaultDump = []DumpTarget{DumpPlaylists}

// ParseDump parses a comma separated list of targets, e.g. "liked,playlists".
// Order and repetition are ignored; an empty string selects [DefaultDump].
func ParseDump(s string) ([]DumpTarget, error) {
	var targets []DumpTarget
	for part := range strings.SplitSeq(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		t := DumpTarget(part)
		switch t {
		case DumpLiked, DumpAlbums, DumpPlaylists:
		default:
			return nil, fmt.Errorf("%w: dump target %q (expected liked, albums or playlists)", shared.ErrInvalidArgument, part)
		}
		if !slices.Contains(targets, t) {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return slices.Clone(DefaultDump), nil
	}
	return targets, nil
}

// BackupOpts configures a [BackupEngine.Run].
type BackupOpts struct {
	Dump []DumpTarget
}

func (o BackupOpts) includes(t DumpTarget) bool {
	if len(o.Dump) == 0 {
		return slices.Contains(DefaultDump, t)
	}
	return slices.Contains(o.Dump, t)
}

// BackupEngine reads a user's library into a [models.Backup].
type BackupEngine struct {
	library services.Library
	now     func() time.Time
}

// NewBackupEngine creates a new BackupEngine reading from library.
func NewBackupEngine(library services.Library) *BackupEngine {
	return &BackupEngine{library: library, now: time.Now}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *BackupEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run reads every selected collection. Any failure ends the run without a result.
func (e *BackupEngine) Run(ctx context.Context, opts BackupOpts, progress chan<- ProgressUpdate) (*models.Backup, error) {
	e.sendProgress(progress, fetchUserUpdate())
	user, err := e.library.Me(ctx)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, loggedInUpdate(user))

	backup := &models.Backup{User: *user, CreatedAt: e.now().UTC(), Playlists: []models.Playlist{}}

	if opts.includes(DumpLiked) {
		e.sendProgress(progress, fetchLikedUpdate())
		liked, err := e.library.LikedTracks(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load liked songs: %w", err)
		}
		backup.Playlists = append(backup.Playlists, models.Playlist{Name: LikedSongsName, Tracks: liked})
	}

	if opts.includes(DumpAlbums) {
		e.sendProgress(progress, fetchAlbumsUpdate())
		albums, err := e.library.LikedAlbums(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load liked albums: %w", err)
		}
		backup.Albums = albums
	}

	if opts.includes(DumpPlaylists) {
		playlists, err := e.playlists(ctx, user.ID, progress)
		if err != nil {
			return nil, err
		}
		backup.Playlists = append(backup.Playlists, playlists...)
	}

	e.sendProgress(progress, completeUpdate(backup))
	return backup, nil
}

func (e *BackupEngine) playlists(ctx context.Context, userID string, progress chan<- ProgressUpdate) ([]models.Playlist, error) {
	e.sendProgress(progress, fetchPlaylistsUpdate())
	listing, err := e.library.Playlists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlists: %w", err)
	}
	e.sendProgress(progress, foundPlaylistsUpdate(len(listing)))

	playlists := make([]models.Playlist, 0, len(listing))
	for i, item := range listing {
		meta, err := models.DecodeItem[models.SimplePlaylist](item)
		if err != nil {
			return nil, fmt.Errorf("%w: playlist %d: %v", shared.ErrMalformedPage, i, err)
		}
		if meta.Tracks.Href == "" {
			return nil, fmt.Errorf("%w: playlist %q has no tracks link", shared.ErrMalformedPage, meta.Name)
		}

		e.sendProgress(progress, playlistTracksUpdate(i+1, len(listing), meta.Name, meta.Tracks.Total))
		tracks, err := e.library.PlaylistTracks(ctx, meta.Tracks.Href)
		if err != nil {
			return nil, fmt.Errorf("failed to load playlist %q: %w", meta.Name, err)
		}

		playlists = append(playlists, models.Playlist{Name: meta.Name, Raw: item, Tracks: tracks})
	}
	return playlists, nil
}
