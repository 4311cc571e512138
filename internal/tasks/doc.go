// Package tasks assembles a library backup with real-time progress reporting.
//
// # Core Operation
//
// [BackupEngine.Run] walks the user's library in a fixed order:
//
//  1. The profile of the token's user
//  2. Liked songs, kept as a synthetic "Liked Songs" playlist placed first
//  3. Liked albums
//  4. Every playlist listed for the user, each followed by a walk of its tracks
//
// Which collections are read is selected with [DumpTarget] values. The first failure ends the run
// and no partial backup is returned.
//
// # Progress Reporting
//
// Progress is reported on an optional channel. The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
