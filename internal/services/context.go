package services

import "context"

type contextKey string

const (
	backupKey contextKey = "backup"
	runIDKey  contextKey = "run_id"
)

// WithBackup annotates context with the backup filename being processed.
func WithBackup(ctx context.Context, filename string) context.Context {
	if filename == "" {
		return ctx
	}
	return context.WithValue(ctx, backupKey, filename)
}

// BackupFromContext returns the backup filename if present.
func BackupFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(backupKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with a sync run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the correlation identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
