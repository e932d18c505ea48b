// Package services defines shared utilities consumed by the tracker run loop
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp backup filenames and run correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into retryable (transient storage trouble) and per-backup-fatal
//     (unparseable filenames, bad configuration) conditions.
//
// Use these helpers when wiring new collaborators so operational behaviour
// (error handling, observability) stays uniform across the sync pipeline.
package services
