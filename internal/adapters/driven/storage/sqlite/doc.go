// Package sqlite records pipeline run summaries in a SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Buckets and item outcomes are stored as a JSON column alongside the
// run's scalar fields, so a summary round-trips exactly.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.quire/data/runs.db
package sqlite
