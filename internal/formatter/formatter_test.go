package formatter

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
	th "github.com/desertthunder/spotx/internal/testing"
)

func TestParseFormat(t *testing.T) {
	t.Run("supported", func(t *testing.T) {
		for _, f := range Formats() {
			got, err := ParseFormat(strings.ToUpper(string(f)))
			if err != nil || got != f {
				t.Errorf("expected %s, got %s (%v)", f, got, err)
			}
		}
		if got, _ := ParseFormat("markdown"); got != Markdown {
			t.Errorf("expected markdown alias, got %s", got)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := ParseFormat("yaml")
		if !errors.Is(err, shared.ErrUnsupportedType) {
			t.Errorf("expected ErrUnsupportedType, got %v", err)
		}
		if err == nil || !strings.Contains(err.Error(), "json, txt, csv, md, xspf") {
			t.Errorf("expected supported formats in error, got %v", err)
		}
	})
}

func TestExporters(t *testing.T) {
	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(th.SampleBackup())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var doc struct {
			Playlists []map[string]json.RawMessage `json:"playlists"`
			Albums    []json.RawMessage            `json:"albums"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}

		if len(doc.Playlists) != 2 || len(doc.Albums) != 1 {
			t.Fatalf("unexpected document %s", data)
		}
		if string(doc.Playlists[0]["name"]) != `"Liked Songs"` {
			t.Errorf("expected liked songs first, got %s", doc.Playlists[0]["name"])
		}
		if string(doc.Playlists[1]["uri"]) != `"spotify:playlist:p1"` {
			t.Errorf("expected listing fields preserved, got %s", doc.Playlists[1]["uri"])
		}

		var tracks []json.RawMessage
		if err := json.Unmarshal(doc.Playlists[0]["tracks"], &tracks); err != nil || len(tracks) != 2 {
			t.Errorf("expected raw entries including the null track, got %s", doc.Playlists[0]["tracks"])
		}
	})

	t.Run("ExportToJSON empty backup", func(t *testing.T) {
		data, err := ExportToJSON(&models.Backup{})
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if string(data) != `{"playlists":[],"albums":[]}` {
			t.Errorf("unexpected output %s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(th.SampleBackup())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		want := "Liked Songs\r\n" +
			"Song One\tArtist One\tAlbum One\tspotify:track:t1\t2020-02-02\r\n" +
			"\r\n" +
			"Road Trip\r\n" +
			"Song Two\tArtist Two\tAlbum Two\tspotify:track:t2\t2020-02-02\r\n" +
			"\r\n" +
			"Liked Albums\r\n" +
			"Saved Album\tAlbum Artist\t-\tspotify:album:a1\t1999-09-09\r\n" +
			"\r\n"
		if string(data) != want {
			t.Errorf("unexpected text output:\n%q\nwant:\n%q", data, want)
		}
	})

	t.Run("ExportToText multiple artists", func(t *testing.T) {
		b := &models.Backup{Playlists: []models.Playlist{{
			Name: "Duets",
			Tracks: models.ItemCollection{
				models.Item(`{"track":{"name":"Duet","artists":[{"name":"A"},{"name":"B"}],"album":{"name":"X"},"uri":"spotify:track:d"}}`),
			},
		}}}
		data, err := ExportToText(b)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		if !strings.Contains(string(data), "Duet\tA, B\tX\tspotify:track:d\t\r\n") {
			t.Errorf("expected joined artists, got %q", data)
		}
	})

	t.Run("ExportToText columns line up", func(t *testing.T) {
		data, err := ExportToText(th.SampleBackup())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		for line := range strings.SplitSeq(string(data), "\r\n") {
			if !strings.Contains(line, "\t") {
				continue
			}
			cols := strings.Split(line, "\t")
			if len(cols) != 5 {
				t.Fatalf("expected 5 columns, got %d in %q", len(cols), line)
			}
			if !strings.HasPrefix(cols[3], "spotify:") {
				t.Errorf("expected uri in the fourth column, got %q", line)
			}
		}
	})

	t.Run("ExportToText invalid entry", func(t *testing.T) {
		b := &models.Backup{Playlists: []models.Playlist{{Name: "Broken", Tracks: models.ItemCollection{models.Item(`[1]`)}}}}
		if _, err := ExportToText(b); err == nil || !strings.Contains(err.Error(), "Broken") {
			t.Errorf("expected error naming the playlist, got %v", err)
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(th.SampleBackup())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("expected header + 2 tracks + 1 album, got %d records", len(records))
		}
		if strings.Join(records[0], ",") != "Collection,Name,Artists,Album,Release Date,URI" {
			t.Errorf("unexpected headers %v", records[0])
		}
		if records[1][0] != "Liked Songs" || records[1][1] != "Song One" || records[1][4] != "2020-02-02" {
			t.Errorf("unexpected first row %v", records[1])
		}
		if records[3][0] != LikedAlbumsTitle || records[3][5] != "spotify:album:a1" {
			t.Errorf("unexpected album row %v", records[3])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(th.SampleBackup())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{
			"# Spotify Backup",
			"**User**: Test User",
			"**Playlists**: 2",
			"**Tracks**: 3",
			"## Liked Songs",
			"1. Artist One - Song One (Album One) [3:05]",
			"## Road Trip",
			"## Liked Albums",
			"1. Album Artist - Saved Album (1999-09-09)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown escapes", func(t *testing.T) {
		b := &models.Backup{Playlists: []models.Playlist{{Name: "my_*list*"}}}
		data, err := ExportToMarkdown(b)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if !strings.Contains(string(data), `## my\_\*list\*`) {
			t.Errorf("expected escaped heading, got %s", data)
		}
	})

	t.Run("ExportToXSPF", func(t *testing.T) {
		data, err := ExportToXSPF(th.SampleBackup())
		if err != nil {
			t.Fatalf("ExportToXSPF failed: %v", err)
		}

		if !strings.HasPrefix(string(data), "<?xml") {
			t.Errorf("expected XML declaration, got %s", data[:20])
		}
		if !strings.Contains(string(data), `xmlns="http://xspf.org/ns/0/"`) {
			t.Errorf("expected XSPF namespace, got %s", data)
		}

		var doc xspfPlaylist
		if err := xml.Unmarshal(data, &doc); err != nil {
			t.Fatalf("invalid XML: %v", err)
		}
		if len(doc.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(doc.Tracks))
		}

		first := doc.Tracks[0]
		if first.Title != "Song One" || first.Creator != "Artist One" || first.Annotation != "Liked Songs" {
			t.Errorf("unexpected track %+v", first)
		}
		if first.Location != "https://open.spotify.com/track/t1" || first.Duration != 185000 {
			t.Errorf("unexpected track location or duration %+v", first)
		}
		if doc.Creator != "Test User" || doc.Date != "2025-03-04T05:06:07Z" {
			t.Errorf("unexpected header %+v", doc)
		}
	})
}

func TestWrite(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "backup.txt")

		if err := Write(th.SampleBackup(), Text, path); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "Liked Songs\r\n") {
			t.Errorf("unexpected content %q", content)
		}

		entries, err := os.ReadDir(filepath.Dir(path))
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("expected no leftover temporary files, got %v", entries)
		}
	})

	t.Run("replaces existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "backup.json")
		if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		if err := Write(th.SampleBackup(), JSON, path); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, `{"playlists":`) {
			t.Errorf("expected JSON content, got %q", content)
		}
	})

	t.Run("encode failure leaves no file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "backup.txt")
		b := &models.Backup{Playlists: []models.Playlist{{Name: "Broken", Tracks: models.ItemCollection{models.Item(`"x"`)}}}}

		if err := Write(b, Text, path); err == nil {
			t.Fatal("expected error")
		}
		th.AssertFileNotExists(t, path)
	})

	t.Run("unsupported format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "backup.yaml")
		if err := Write(th.SampleBackup(), Format("yaml"), path); !errors.Is(err, shared.ErrUnsupportedType) {
			t.Errorf("expected ErrUnsupportedType, got %v", err)
		}
	})
}
