// Package models defines the values passed between the fetcher, the backup engine and the formatters.
//
//   - [Page] : one response of a paginated collection endpoint ("items", "next", "total")
//   - [ItemCollection] : every item of a collection, concatenated in page order
//   - [Playlist] : a playlist listing entry paired with its fully fetched tracks
//   - [Backup] : playlists and saved albums for one run
//
// Items are [json.RawMessage] values. The fetcher never interprets them, so a backup written as JSON
// contains exactly what the API returned.
package models
