// Spotify Web API implementation of [Library]
package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// Page sizes are the maximum each endpoint accepts.
const (
	collectionPageSize = 50
	playlistPageSize   = 100
)

// SpotifyService reads a user's library through a [Fetcher].
type SpotifyService struct {
	fetcher        *Fetcher
	collectionSize int
	playlistSize   int
}

// NewSpotifyService creates a [SpotifyService] requesting the largest pages each endpoint allows.
func NewSpotifyService(fetcher *Fetcher) *SpotifyService {
	return &SpotifyService{fetcher: fetcher, collectionSize: collectionPageSize, playlistSize: playlistPageSize}
}

// WithPageSize caps every page request at n items. Values outside 1..100 are ignored.
func (s *SpotifyService) WithPageSize(n int) *SpotifyService {
	if n < 1 || n > playlistPageSize {
		return s
	}
	s.collectionSize = min(n, collectionPageSize)
	s.playlistSize = n
	return s
}

// Name returns the service name.
func (s *SpotifyService) Name() string { return "Spotify" }

func (s *SpotifyService) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.fetcher.Get(ctx, "me", nil, &user); err != nil {
		return nil, fmt.Errorf("failed to load user profile: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: user profile has no id", shared.ErrMalformedPage)
	}
	return &user, nil
}

func (s *SpotifyService) LikedTracks(ctx context.Context) (models.ItemCollection, error) {
	return s.fetcher.FetchAll(ctx, "me/tracks", s.collectionSize)
}

func (s *SpotifyService) LikedAlbums(ctx context.Context) (models.ItemCollection, error) {
	return s.fetcher.FetchAll(ctx, "me/albums", s.collectionSize)
}

func (s *SpotifyService) Playlists(ctx context.Context, userID string) (models.ItemCollection, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}
	return s.fetcher.FetchAll(ctx, "users/"+url.PathEscape(userID)+"/playlists", s.collectionSize)
}

func (s *SpotifyService) PlaylistTracks(ctx context.Context, href string) (models.ItemCollection, error) {
	if href == "" {
		return nil, fmt.Errorf("%w: playlist tracks href", shared.ErrMissingArgument)
	}
	return s.fetcher.FetchAll(ctx, href, s.playlistSize)
}
