// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/spotx/internal/models"
)

// MockLibrary is a test double for services.Library backed by canned collections.
//
// Errors keyed by method name ("Me", "LikedTracks", "LikedAlbums", "Playlists") or by a tracks href
// are returned in place of the data.
type MockLibrary struct {
	User      *models.User
	Liked     models.ItemCollection
	Albums    models.ItemCollection
	Lists     models.ItemCollection
	Tracks    map[string]models.ItemCollection
	Errors    map[string]error
	mu        sync.Mutex
	callOrder []string
}

func (m *MockLibrary) record(call string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callOrder = append(m.callOrder, call)
	return m.Errors[call]
}

// Calls returns the methods invoked so far, in order.
func (m *MockLibrary) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.callOrder...)
}

func (m *MockLibrary) Me(ctx context.Context) (*models.User, error) {
	if err := m.record("Me"); err != nil {
		return nil, err
	}
	if m.User == nil {
		return &models.User{ID: "mock-user", DisplayName: "Mock User"}, nil
	}
	return m.User, nil
}

func (m *MockLibrary) LikedTracks(ctx context.Context) (models.ItemCollection, error) {
	if err := m.record("LikedTracks"); err != nil {
		return nil, err
	}
	return m.Liked, nil
}

func (m *MockLibrary) LikedAlbums(ctx context.Context) (models.ItemCollection, error) {
	if err := m.record("LikedAlbums"); err != nil {
		return nil, err
	}
	return m.Albums, nil
}

func (m *MockLibrary) Playlists(ctx context.Context, userID string) (models.ItemCollection, error) {
	if err := m.record("Playlists"); err != nil {
		return nil, err
	}
	return m.Lists, nil
}

func (m *MockLibrary) PlaylistTracks(ctx context.Context, href string) (models.ItemCollection, error) {
	if err := m.record(href); err != nil {
		return nil, err
	}
	return m.Tracks[href], nil
}

func (m *MockLibrary) Name() string { return "mock" }

// TrackItem builds a playlist entry as returned by the API.
func TrackItem(id, name, artist, album string) models.Item {
	return models.Item(fmt.Sprintf(
		`{"added_at":"2024-01-01T00:00:00Z","track":{"id":%q,"name":%q,"artists":[{"name":%q}],"album":{"name":%q,"release_date":"2020-02-02"},"duration_ms":185000,"uri":"spotify:track:%s"}}`,
		id, name, artist, album, id,
	))
}

// NullTrackItem builds a playlist entry whose track is no longer available.
func NullTrackItem() models.Item {
	return models.Item(`{"added_at":"2024-01-01T00:00:00Z","track":null}`)
}

// AlbumItem builds a saved album entry.
func AlbumItem(id, name, artist, released string) models.Item {
	return models.Item(fmt.Sprintf(
		`{"added_at":"2024-01-01T00:00:00Z","album":{"id":%q,"name":%q,"artists":[{"name":%q}],"release_date":%q,"uri":"spotify:album:%s"}}`,
		id, name, artist, released, id,
	))
}

// PlaylistItem builds a playlist listing entry pointing at href for its tracks.
func PlaylistItem(id, name, href string, total int) models.Item {
	return models.Item(fmt.Sprintf(
		`{"id":%q,"name":%q,"public":true,"tracks":{"href":%q,"total":%d},"uri":"spotify:playlist:%s"}`,
		id, name, href, total, id,
	))
}

// SampleBackup returns a backup with a liked songs playlist, a regular playlist and one saved album.
func SampleBackup() *models.Backup {
	return &models.Backup{
		User:      models.User{ID: "user-1", DisplayName: "Test User"},
		CreatedAt: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
		Playlists: []models.Playlist{
			{
				Name: "Liked Songs",
				Tracks: models.ItemCollection{
					TrackItem("t1", "Song One", "Artist One", "Album One"),
					NullTrackItem(),
				},
			},
			{
				Name: "Road Trip",
				Raw:  PlaylistItem("p1", "Road Trip", "https://api.example.com/v1/playlists/p1/tracks", 1),
				Tracks: models.ItemCollection{
					TrackItem("t2", "Song Two", "Artist Two", "Album Two"),
				},
			},
		},
		Albums: models.ItemCollection{
			AlbumItem("a1", "Saved Album", "Album Artist", "1999-09-09"),
		},
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
	mu       sync.Mutex
	calls    int
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.response, m.err
}

// Calls returns the number of round trips made.
func (m *MockRoundTripper) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("File exists: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
