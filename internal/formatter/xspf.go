package formatter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/desertthunder/spotx/internal/models"
)

// XSPFNamespace is the default namespace of an XSPF document, see https://xspf.org/spec
const XSPFNamespace = "http://xspf.org/ns/0/"

type xspfPlaylist struct {
	XMLName   xml.Name    `xml:"playlist"`
	Version   string      `xml:"version,attr"`
	Namespace string      `xml:"xmlns,attr"`
	Title     string      `xml:"title,omitempty"`
	Creator   string      `xml:"creator,omitempty"`
	Date      string      `xml:"date,omitempty"`
	Tracks    []xspfTrack `xml:"trackList>track"`
}

type xspfTrack struct {
	Location   string `xml:"location,omitempty"`
	Identifier string `xml:"identifier,omitempty"`
	Title      string `xml:"title,omitempty"`
	Creator    string `xml:"creator,omitempty"`
	Annotation string `xml:"annotation,omitempty"`
	Album      string `xml:"album,omitempty"`
	TrackNum   int    `xml:"trackNum,omitempty"`
	Duration   int    `xml:"duration,omitempty"`
}

// ExportToXSPF writes every playlist track into a single XSPF track list.
//
// Each track is annotated with the playlist it came from and numbered within it.
// Saved albums are not tracks and are left out.
func ExportToXSPF(b *models.Backup) ([]byte, error) {
	doc := xspfPlaylist{
		Version:   "1",
		Namespace: XSPFNamespace,
		Title:     "Spotify Backup",
		Tracks:    []xspfTrack{},
	}
	if b.User.ID != "" {
		doc.Creator = displayName(b.User)
	}
	if !b.CreatedAt.IsZero() {
		doc.Date = b.CreatedAt.UTC().Format(time.RFC3339)
	}

	for _, p := range b.Playlists {
		tracks, err := playlistTracks(p)
		if err != nil {
			return nil, err
		}
		for i, t := range tracks {
			doc.Tracks = append(doc.Tracks, xspfTrack{
				Location:   spotifyLink(t),
				Identifier: t.URI,
				Title:      t.Name,
				Creator:    models.ArtistNames(t.Artists),
				Annotation: p.Name,
				Album:      t.Album.Name,
				TrackNum:   i + 1,
				Duration:   t.DurationMS,
			})
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode XSPF: %w", err)
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

func spotifyLink(t models.SpotifyTrack) string {
	if t.ID == "" {
		return ""
	}
	return "https://open.spotify.com/track/" + t.ID
}
