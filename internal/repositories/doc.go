// Package repositories implements SQLite persistence for backup run history.
//
// [RunRepository] records each backup invocation when it starts and updates it when it finishes,
// so interrupted runs remain visible with status "running".
package repositories
