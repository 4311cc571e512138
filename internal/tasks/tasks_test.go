package tasks

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	th "github.com/desertthunder/spotx/internal/testing"
)

const (
	mixHref   = "https://api.example.com/v1/playlists/p1/tracks"
	chillHref = "https://api.example.com/v1/playlists/p2/tracks"
)

func newLibrary() *th.MockLibrary {
	return &th.MockLibrary{
		User:   &models.User{ID: "user-1", DisplayName: "Test User"},
		Liked:  models.ItemCollection{th.TrackItem("l1", "Liked", "A", "B")},
		Albums: models.ItemCollection{th.AlbumItem("a1", "Album", "C", "2001")},
		Lists: models.ItemCollection{
			th.PlaylistItem("p1", "Mix", mixHref, 2),
			th.PlaylistItem("p2", "Chill", chillHref, 0),
		},
		Tracks: map[string]models.ItemCollection{
			mixHref:   {th.TrackItem("t1", "One", "X", "Y"), th.NullTrackItem()},
			chillHref: {},
		},
	}
}

func TestParseDump(t *testing.T) {
	tc := []struct {
		in   string
		want []DumpTarget
	}{
		{"", []DumpTarget{DumpPlaylists}},
		{"playlists", []DumpTarget{DumpPlaylists}},
		{"liked,playlists", []DumpTarget{DumpLiked, DumpPlaylists}},
		{"playlists, liked", []DumpTarget{DumpPlaylists, DumpLiked}},
		{"LIKED,albums,liked", []DumpTarget{DumpLiked, DumpAlbums}},
	}
	for _, c := range tc {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseDump(c.in)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !slices.Equal(got, c.want) {
				t.Errorf("expected %v, got %v", c.want, got)
			}
		})
	}

	t.Run("invalid", func(t *testing.T) {
		if _, err := ParseDump("liked,podcasts"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestBackupEngineRun(t *testing.T) {
	fixed := time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)

	t.Run("default dumps playlists only", func(t *testing.T) {
		lib := newLibrary()
		engine := NewBackupEngine(lib)
		engine.now = func() time.Time { return fixed }

		backup, err := engine.Run(context.Background(), BackupOpts{}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if backup.User.ID != "user-1" || !backup.CreatedAt.Equal(fixed) {
			t.Errorf("unexpected header %+v", backup)
		}
		if len(backup.Playlists) != 2 || backup.Playlists[0].Name != "Mix" || backup.Playlists[1].Name != "Chill" {
			t.Fatalf("unexpected playlists %+v", backup.Playlists)
		}
		if len(backup.Playlists[0].Tracks) != 2 {
			t.Errorf("expected null entries to be kept in the backup, got %d", len(backup.Playlists[0].Tracks))
		}
		if len(backup.Playlists[0].Raw) == 0 {
			t.Error("expected listing entry to be kept")
		}
		if backup.Albums != nil {
			t.Errorf("expected no albums, got %v", backup.Albums)
		}

		want := []string{"Me", "Playlists", mixHref, chillHref}
		if !slices.Equal(lib.Calls(), want) {
			t.Errorf("expected calls %v, got %v", want, lib.Calls())
		}
	})

	t.Run("liked songs come first", func(t *testing.T) {
		lib := newLibrary()
		opts := BackupOpts{Dump: []DumpTarget{DumpPlaylists, DumpLiked, DumpAlbums}}

		backup, err := NewBackupEngine(lib).Run(context.Background(), opts, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(backup.Playlists) != 3 || backup.Playlists[0].Name != LikedSongsName {
			t.Fatalf("expected liked songs first, got %+v", backup.Playlists)
		}
		if len(backup.Albums) != 1 {
			t.Errorf("expected 1 album, got %d", len(backup.Albums))
		}

		want := []string{"Me", "LikedTracks", "LikedAlbums", "Playlists", mixHref, chillHref}
		if !slices.Equal(lib.Calls(), want) {
			t.Errorf("expected calls %v, got %v", want, lib.Calls())
		}
	})

	t.Run("liked only", func(t *testing.T) {
		lib := newLibrary()
		backup, err := NewBackupEngine(lib).Run(context.Background(), BackupOpts{Dump: []DumpTarget{DumpLiked}}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(backup.Playlists) != 1 || backup.Playlists[0].Name != LikedSongsName {
			t.Errorf("unexpected playlists %+v", backup.Playlists)
		}
	})

	t.Run("failure returns no backup", func(t *testing.T) {
		tc := []string{"Me", "LikedTracks", "LikedAlbums", "Playlists", chillHref}
		boom := errors.New("boom")

		for _, failing := range tc {
			t.Run(failing, func(t *testing.T) {
				lib := newLibrary()
				lib.Errors = map[string]error{failing: boom}
				opts := BackupOpts{Dump: []DumpTarget{DumpLiked, DumpAlbums, DumpPlaylists}}

				backup, err := NewBackupEngine(lib).Run(context.Background(), opts, nil)
				if backup != nil {
					t.Errorf("expected nil backup, got %+v", backup)
				}
				if !errors.Is(err, boom) {
					t.Errorf("expected wrapped error, got %v", err)
				}
			})
		}
	})

	t.Run("playlist without tracks link", func(t *testing.T) {
		lib := newLibrary()
		lib.Lists = models.ItemCollection{models.Item(`{"name":"Odd","tracks":{}}`)}

		_, err := NewBackupEngine(lib).Run(context.Background(), BackupOpts{}, nil)
		if !errors.Is(err, shared.ErrMalformedPage) {
			t.Errorf("expected ErrMalformedPage, got %v", err)
		}
	})

	t.Run("progress updates", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 32)
		opts := BackupOpts{Dump: []DumpTarget{DumpLiked, DumpPlaylists}}

		if _, err := NewBackupEngine(newLibrary()).Run(context.Background(), opts, progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		var phases []Phase
		var last ProgressUpdate
		for u := range progress {
			phases = append(phases, u.Phase)
			last = u
		}

		want := []Phase{FetchUser, FetchUser, FetchLiked, FetchPlaylists, FetchPlaylists, FetchPlaylistTracks, FetchPlaylistTracks, Complete}
		if !slices.Equal(phases, want) {
			t.Errorf("expected phases %v, got %v", want, phases)
		}
		if last.Message != "Loaded 3 playlists, 3 tracks, 0 albums" {
			t.Errorf("unexpected final message %q", last.Message)
		}
	})

	t.Run("full progress channel does not block", func(t *testing.T) {
		progress := make(chan ProgressUpdate)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if _, err := NewBackupEngine(newLibrary()).Run(context.Background(), BackupOpts{}, progress); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Run blocked on an unread progress channel")
		}
	})
}

func TestPhaseString(t *testing.T) {
	if FetchPlaylistTracks.String() != "fetch_playlist_tracks" || Complete.String() != "complete" {
		t.Error("unexpected phase names")
	}
	if Phase(99).String() != "" {
		t.Error("expected empty name for unknown phase")
	}
}
