package services_test

import (
	"errors"
	"strings"
	"testing"

	"chartertrack/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "azure", "download", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"azure", "download", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "tracker", "process", "unknown", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected default transient marker, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation stays failed", services.Wrap(services.ErrValidation, "backup", "parse", "bad name", nil), false},
		{"configuration stays failed", services.Wrap(services.ErrConfiguration, "azure", "auth", "missing credentials", nil), false},
		{"not found stays failed", services.Wrap(services.ErrNotFound, "store", "lookup", "", nil), false},
		{"transient retries", services.Wrap(services.ErrTransient, "azure", "download", "timeout", nil), true},
		{"plain error retries", errors.New("disk full"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
