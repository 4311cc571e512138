// Spotify Web API object views, based on https://developer.spotify.com/documentation/web-api/reference/
//
// Only the fields the text formatters print are declared; the backup itself keeps the raw JSON.
package models

import (
	"encoding/json"
	"strings"
)

// SpotifyArtist represents a simplified artist object.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents an album object.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	URI         string          `json:"uri"`
}

// SpotifyTrack represents a track object.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyPlaylistTrack is an entry of a playlist or of the saved tracks collection.
//
// Track is nil for entries whose track is no longer available.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifySavedAlbum is an entry of the saved albums collection.
type SpotifySavedAlbum struct {
	AddedAt string       `json:"added_at"`
	Album   SpotifyAlbum `json:"album"`
}

// TracksRef is the reference a playlist listing carries in place of its tracks.
type TracksRef struct {
	Href  string `json:"href"`
	Total int    `json:"total"`
}

// SimplePlaylist is a playlist as returned by the playlists listing.
type SimplePlaylist struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Tracks TracksRef `json:"tracks"`
	URI    string    `json:"uri"`
}

// ArtistNames joins artist names with ", ".
func ArtistNames(artists []SpotifyArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// DecodeItem decodes a raw item into a typed view.
func DecodeItem[T any](item Item) (T, error) {
	var v T
	err := json.Unmarshal(item, &v)
	return v, err
}
