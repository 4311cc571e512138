// package services defines interface Library for reading a user's music library over HTTP
package services

import (
	"context"

	"github.com/desertthunder/spotx/internal/models"
)

// Library reads the collections a backup is built from.
//
// Every collection method returns the full collection or an error, never a partial list.
type Library interface {
	// Me returns the profile of the user the token belongs to.
	Me(ctx context.Context) (*models.User, error)

	// LikedTracks returns the user's saved tracks.
	LikedTracks(ctx context.Context) (models.ItemCollection, error)

	// LikedAlbums returns the user's saved albums.
	LikedAlbums(ctx context.Context) (models.ItemCollection, error)

	// Playlists returns the playlists owned or followed by userID.
	Playlists(ctx context.Context, userID string) (models.ItemCollection, error)

	// PlaylistTracks returns the entries of the playlist whose tracks reference is href.
	PlaylistTracks(ctx context.Context, href string) (models.ItemCollection, error)

	// Name returns the name of the service
	Name() string
}
