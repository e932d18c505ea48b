// Package store persists charter tracking state in SQLite.
//
// The Store manages database connections, schema initialization, and the
// read queries behind stats and reports. All per-backup mutations (charter
// inserts, status flips, events, discrepancies, the processed flag) go
// through a single Tx so one backup either lands completely or not at all.
// Multi-row statements are chunked at the configured batch size.
//
// The database is the durable source of truth for charter history; the
// tracker's in-memory projection is rebuilt from it on startup. Schema
// changes bump the version in schema.go; users reset the database to adopt
// the new schema.
package store
