// Package tracker turns per-backup charter extractions into a durable
// lifecycle history.
//
// The Tracker owns the in-memory projection of every charter currently
// marked present and diffs each backup against it, emitting appearance and
// disappearance events. All mutations for one backup commit in a single
// store transaction; the projection is only updated after the commit, so an
// aborted backup leaves both the database and the projection untouched.
//
// The Runner drives a chronological backup sequence end to end: it samples
// the backup list, skips already-processed backups, prefetches the next
// archive while the current one is applied, and collects per-backup
// failures without stopping the run.
package tracker
