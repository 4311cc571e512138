package tasks

import (
	"fmt"

	"github.com/desertthunder/spotx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchUser Phase = iota
	FetchLiked
	FetchAlbums
	FetchPlaylists
	FetchPlaylistTracks
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchUser:
		return "fetch_user"
	case FetchLiked:
		return "fetch_liked"
	case FetchAlbums:
		return "fetch_albums"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchPlaylistTracks:
		return "fetch_playlist_tracks"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func fetchUserUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchUser, Message: "Loading user info..."}
}

func loggedInUpdate(u *models.User) ProgressUpdate {
	return ProgressUpdate{Phase: FetchUser, Step: 1, Total: 1, Message: fmt.Sprintf("Logged in as %s (%s)", u.DisplayName, u.ID), Data: u}
}

func fetchLikedUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchLiked, Message: "Loading liked songs..."}
}

func fetchAlbumsUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchAlbums, Message: "Loading liked albums..."}
}

func fetchPlaylistsUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchPlaylists, Message: "Loading playlists..."}
}

func foundPlaylistsUpdate(n int) ProgressUpdate {
	return ProgressUpdate{Phase: FetchPlaylists, Step: n, Total: n, Message: fmt.Sprintf("Found %d playlists", n)}
}

func playlistTracksUpdate(step, total int, name string, tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylistTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loading playlist: %s (%d songs)", name, tracks),
	}
}

func completeUpdate(b *models.Backup) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d playlists, %d tracks, %d albums", len(b.Playlists), b.TrackCount(), len(b.Albums)),
		Data:    b,
	}
}
