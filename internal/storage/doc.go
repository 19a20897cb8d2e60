// Package storage provides the optional notification journal.
//
// The journal is append-only: every delivery attempt (delivered or failed) is
// recorded for later inspection. Nothing in the bot reads it back, so tracked
// status still resets on restart.
//
// Drivers:
//   - "file":   JSON Lines file
//   - "sqlite": SQLite database (modernc.org/sqlite, no cgo)
package storage
