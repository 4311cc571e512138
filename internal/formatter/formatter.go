// package formatter provides functions to export backup data to various formats (JSON, tab separated text, CSV, Markdown, XSPF)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// Format is an output file format.
type Format string

const (
	JSON     Format = "json"
	Text     Format = "txt"
	CSV      Format = "csv"
	Markdown Format = "md"
	XSPF     Format = "xspf"
)

// LikedAlbumsTitle heads the saved albums section of the text formats.
const LikedAlbumsTitle = "Liked Albums"

// Formats lists every supported format.
func Formats() []Format {
	return []Format{JSON, Text, CSV, Markdown, XSPF}
}

// FormatNames returns the supported format names joined with ", ".
func FormatNames() string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// ParseFormat validates a format name. "markdown" is accepted for [Markdown].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, Text, CSV, Markdown, XSPF:
		return f, nil
	case "markdown":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: %s)", shared.ErrUnsupportedType, s, FormatNames())
	}
}

// Encode renders a backup in the given format.
func Encode(b *models.Backup, f Format) ([]byte, error) {
	switch f {
	case JSON:
		return ExportToJSON(b)
	case Text:
		return ExportToText(b)
	case CSV:
		return ExportToCSV(b)
	case Markdown:
		return ExportToMarkdown(b)
	case XSPF:
		return ExportToXSPF(b)
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedType, f)
	}
}

// Write renders a backup and writes it to path, creating parent directories.
//
// The data goes to a temporary file in the same directory which is then renamed over path,
// so path is either left untouched or holds the complete output.
func Write(b *models.Backup, f Format, path string) error {
	data, err := Encode(b, f)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", f, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// ExportToJSON writes {"playlists": [...], "albums": [...]} with every item as returned by the API.
func ExportToJSON(b *models.Backup) ([]byte, error) {
	doc := *b
	if doc.Playlists == nil {
		doc.Playlists = []models.Playlist{}
	}
	if doc.Albums == nil {
		doc.Albums = models.ItemCollection{}
	}
	return shared.MarshalJSON(doc, false)
}

// ExportToText writes each playlist as its name followed by one tab separated line per track:
// name, artists, album, uri, release date. Saved albums use the same columns with "-" as the album.
// Lines end in CRLF and a blank line closes each section.
// Entries whose track is no longer available are skipped.
func ExportToText(b *models.Backup) ([]byte, error) {
	var buf bytes.Buffer

	for _, p := range b.Playlists {
		tracks, err := playlistTracks(p)
		if err != nil {
			return nil, err
		}

		buf.WriteString(p.Name + "\r\n")
		for _, t := range tracks {
			fmt.Fprintf(&buf, "%s\t%s\t%s\t%s\t%s\r\n", t.Name, models.ArtistNames(t.Artists), t.Album.Name, t.URI, t.Album.ReleaseDate)
		}
		buf.WriteString("\r\n")
	}

	if len(b.Albums) > 0 {
		albums, err := savedAlbums(b.Albums)
		if err != nil {
			return nil, err
		}

		buf.WriteString(LikedAlbumsTitle + "\r\n")
		for _, a := range albums {
			fmt.Fprintf(&buf, "%s\t%s\t-\t%s\t%s\r\n", a.Name, models.ArtistNames(a.Artists), a.URI, a.ReleaseDate)
		}
		buf.WriteString("\r\n")
	}

	return buf.Bytes(), nil
}

// ExportToCSV writes one row per track, and one per saved album, with columns:
// Collection, Name, Artists, Album, Release Date, URI
func ExportToCSV(b *models.Backup) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Collection", "Name", "Artists", "Album", "Release Date", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range b.Playlists {
		tracks, err := playlistTracks(p)
		if err != nil {
			return nil, err
		}
		for _, t := range tracks {
			record := []string{p.Name, t.Name, models.ArtistNames(t.Artists), t.Album.Name, t.Album.ReleaseDate, t.URI}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	albums, err := savedAlbums(b.Albums)
	if err != nil {
		return nil, err
	}
	for _, a := range albums {
		record := []string{LikedAlbumsTitle, a.Name, models.ArtistNames(a.Artists), a.Name, a.ReleaseDate, a.URI}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown writes a heading per playlist with a numbered track list.
func ExportToMarkdown(b *models.Backup) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Spotify Backup\n\n")
	if b.User.ID != "" {
		fmt.Fprintf(&buf, "**User**: %s\n", escapeMarkdown(displayName(b.User)))
	}
	if !b.CreatedAt.IsZero() {
		fmt.Fprintf(&buf, "**Created**: %s\n", b.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(&buf, "**Playlists**: %d\n", len(b.Playlists))
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", b.TrackCount())

	for _, p := range b.Playlists {
		tracks, err := playlistTracks(p)
		if err != nil {
			return nil, err
		}

		fmt.Fprintf(&buf, "## %s\n\n", escapeMarkdown(p.Name))
		for i, t := range tracks {
			albumPart := ""
			if t.Album.Name != "" {
				albumPart = fmt.Sprintf(" (%s)", escapeMarkdown(t.Album.Name))
			}
			fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1,
				escapeMarkdown(models.ArtistNames(t.Artists)), escapeMarkdown(t.Name), albumPart, formatDuration(t.DurationMS))
		}
		buf.WriteString("\n")
	}

	if len(b.Albums) > 0 {
		albums, err := savedAlbums(b.Albums)
		if err != nil {
			return nil, err
		}

		fmt.Fprintf(&buf, "## %s\n\n", LikedAlbumsTitle)
		for i, a := range albums {
			fmt.Fprintf(&buf, "%d. %s - %s", i+1, escapeMarkdown(models.ArtistNames(a.Artists)), escapeMarkdown(a.Name))
			if a.ReleaseDate != "" {
				fmt.Fprintf(&buf, " (%s)", a.ReleaseDate)
			}
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// playlistTracks decodes the entries of a playlist, dropping unavailable tracks.
func playlistTracks(p models.Playlist) ([]models.SpotifyTrack, error) {
	tracks := make([]models.SpotifyTrack, 0, len(p.Tracks))
	for i, item := range p.Tracks {
		entry, err := models.DecodeItem[models.SpotifyPlaylistTrack](item)
		if err != nil {
			return nil, fmt.Errorf("playlist %q entry %d: %w", p.Name, i, err)
		}
		if entry.Track == nil {
			continue
		}
		tracks = append(tracks, *entry.Track)
	}
	return tracks, nil
}

func savedAlbums(items models.ItemCollection) ([]models.SpotifyAlbum, error) {
	albums := make([]models.SpotifyAlbum, 0, len(items))
	for i, item := range items {
		entry, err := models.DecodeItem[models.SpotifySavedAlbum](item)
		if err != nil {
			return nil, fmt.Errorf("saved album %d: %w", i, err)
		}
		albums = append(albums, entry.Album)
	}
	return albums, nil
}

func displayName(u models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

// formatDuration renders milliseconds as m:ss.
func formatDuration(ms int) string {
	s := ms / 1000
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

var markdownEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `_`, `\_`, `[`, `\[`, `]`, `\]`, "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
