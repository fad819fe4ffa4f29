// Package database provides SQLite-based storage of annotation runs and
// their scores.
//
// Every saved run keeps its metadata, one row per annotated target and a
// SHA3-256 digest of its predictions, so that identical runs can be
// recognised. Scores are stored either against a saved run or on their
// own when a result file was scored.
//
// The driver is modernc.org/sqlite, a CGO-free implementation, so the
// history is a single file in the XDG data directory.
package database
