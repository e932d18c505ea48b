package services_test

import (
	"context"
	"testing"

	"chartertrack/internal/services"
)

func TestBackupContextRoundTrip(t *testing.T) {
	ctx := services.WithBackup(context.Background(), "full20240115-0230.zip")
	got, ok := services.BackupFromContext(ctx)
	if !ok || got != "full20240115-0230.zip" {
		t.Fatalf("BackupFromContext = %q, %v", got, ok)
	}

	if _, ok := services.BackupFromContext(context.Background()); ok {
		t.Fatal("expected no backup on empty context")
	}
}

func TestRunIDContextRoundTrip(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "abc-123")
	got, ok := services.RunIDFromContext(ctx)
	if !ok || got != "abc-123" {
		t.Fatalf("RunIDFromContext = %q, %v", got, ok)
	}

	if services.WithRunID(context.Background(), "") != context.Background() {
		t.Fatal("empty run id should not allocate a new context")
	}
}
