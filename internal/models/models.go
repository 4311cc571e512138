// package models defines the data model for the Spotify backup tool
package models

import (
	"encoding/json"
	"time"
)

// Item is one element of a collection page, kept as raw JSON so nothing the API returns is lost.
type Item = json.RawMessage

// ItemCollection is every item of a paginated collection in server page order.
type ItemCollection []Item

// Page is one response of a paginated collection endpoint.
type Page struct {
	Items []Item  `json:"items"`
	Next  *string `json:"next"`
	Total *int    `json:"total,omitempty"`
}

// HasNext reports whether the server supplied a continuation link.
func (p *Page) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// TotalOr returns the advertised total, or fallback when the server omitted it.
func (p *Page) TotalOr(fallback int) int {
	if p.Total == nil {
		return fallback
	}
	return *p.Total
}

// User is the subset of the current user's profile the backup needs.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Playlist is a playlist object as listed by the API with its tracks fetched in full.
//
// Raw holds the listing entry untouched; Tracks replaces its "tracks" reference object.
type Playlist struct {
	Name   string         `json:"name"`
	Raw    Item           `json:"-"`
	Tracks ItemCollection `json:"tracks"`
}

// MarshalJSON writes the original playlist object with "tracks" replaced by the fetched items.
func (p Playlist) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(p.Raw) > 0 {
		if err := json.Unmarshal(p.Raw, &fields); err != nil {
			return nil, err
		}
	}

	name, err := json.Marshal(p.Name)
	if err != nil {
		return nil, err
	}
	fields["name"] = name

	tracks := p.Tracks
	if tracks == nil {
		tracks = ItemCollection{}
	}
	encoded, err := json.Marshal(tracks)
	if err != nil {
		return nil, err
	}
	fields["tracks"] = encoded

	return json.Marshal(fields)
}

// Backup is the complete result handed to the output formatters.
type Backup struct {
	User      User           `json:"-"`
	CreatedAt time.Time      `json:"-"`
	Playlists []Playlist     `json:"playlists"`
	Albums    ItemCollection `json:"albums"`
}

// TrackCount returns the number of playlist entries across all playlists.
func (b *Backup) TrackCount() int {
	n := 0
	for _, p := range b.Playlists {
		n += len(p.Tracks)
	}
	return n
}
