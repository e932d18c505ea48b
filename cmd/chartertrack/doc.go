// Command chartertrack tracks the lifecycle of charter records across
// chronological eXist-db backups: sync processes pending backups, the report
// commands surface missing charters, and extract-missing recovers their
// bytes from the backups they were last seen in.
package main
