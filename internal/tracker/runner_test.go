package tracker_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"chartertrack/internal/logging"
	"chartertrack/internal/tracker"
)

// fakeSource serves archives from a filename to local path map.
type fakeSource struct {
	archives   map[string]string
	fetchFails map[string]error
}

func (f *fakeSource) ListBackups(context.Context) ([]string, error) {
	names := make([]string, 0, len(f.archives))
	for name := range f.archives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeSource) FetchBackup(_ context.Context, filename string) (string, error) {
	if err := f.fetchFails[filename]; err != nil {
		return "", err
	}
	path, ok := f.archives[filename]
	if !ok {
		return "", fmt.Errorf("unknown backup %s", filename)
	}
	return path, nil
}

func TestRunnerProcessesPendingBackupsInOrder(t *testing.T) {
	tr, st, cfg := newTracker(t)
	dir := cfg.Backups.LocalDir

	source := &fakeSource{archives: map[string]string{
		"full20240101-0230.zip": writeBackup(t, dir, "full20240101-0230.zip", "a.xml", "b.xml"),
		"full20240108-0230.zip": writeBackup(t, dir, "full20240108-0230.zip", "a.xml"),
		"not-a-backup.zip":      writeBackup(t, dir, "not-a-backup.zip", "x.xml"),
	}}

	runner := tracker.NewRunner(tr, source, st, cfg, logging.NewNop())
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Available != 2 {
		t.Fatalf("non-matching filenames must be excluded, got available=%d", summary.Available)
	}
	if len(summary.Processed) != 2 || len(summary.Failures) != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Processed[0].Filename != "full20240101-0230.zip" || summary.Processed[1].Filename != "full20240108-0230.zip" {
		t.Fatalf("backups must apply chronologically: %+v", summary.Processed)
	}
	if summary.Processed[1].Disappeared != 1 {
		t.Fatalf("expected one disappearance in second backup: %+v", summary.Processed[1])
	}

	// Second run finds nothing left to do.
	summary, err = runner.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if summary.Selected != 0 || len(summary.Processed) != 0 {
		t.Fatalf("expected idle second run, got %+v", summary)
	}
}

func TestRunnerSamplesEveryNthPlusLatest(t *testing.T) {
	tr, st, cfg := newTracker(t)
	cfg.Backups.Frequency = 3
	dir := cfg.Backups.LocalDir

	source := &fakeSource{archives: map[string]string{}}
	for day := 1; day <= 5; day++ {
		name := fmt.Sprintf("full2024010%d-0230.zip", day)
		source.archives[name] = writeBackup(t, dir, name, "a.xml")
	}

	runner := tracker.NewRunner(tr, source, st, cfg, logging.NewNop())
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Indexes 0 and 3, plus the newest backup.
	want := []string{"full20240101-0230.zip", "full20240104-0230.zip", "full20240105-0230.zip"}
	if len(summary.Processed) != len(want) {
		t.Fatalf("expected %d processed, got %+v", len(want), summary.Processed)
	}
	for i, stats := range summary.Processed {
		if stats.Filename != want[i] {
			t.Fatalf("processed[%d] = %s, want %s", i, stats.Filename, want[i])
		}
	}
}

func TestRunnerCollectsFailuresAndContinues(t *testing.T) {
	tr, st, cfg := newTracker(t)
	dir := cfg.Backups.LocalDir

	source := &fakeSource{
		archives: map[string]string{
			"full20240101-0230.zip": writeBackup(t, dir, "full20240101-0230.zip", "a.xml"),
			"full20240108-0230.zip": writeBackup(t, dir, "full20240108-0230.zip", "a.xml", "b.xml"),
		},
		fetchFails: map[string]error{
			"full20240101-0230.zip": errors.New("storage timeout"),
		},
	}

	runner := tracker.NewRunner(tr, source, st, cfg, logging.NewNop())
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(summary.Failures) != 1 || summary.Failures[0].Filename != "full20240101-0230.zip" {
		t.Fatalf("unexpected failures: %+v", summary.Failures)
	}
	if len(summary.Processed) != 1 || summary.Processed[0].Filename != "full20240108-0230.zip" {
		t.Fatalf("later backups must still apply: %+v", summary.Processed)
	}

	processed, err := st.IsBackupProcessed(context.Background(), "full20240101-0230.zip")
	if err != nil {
		t.Fatalf("IsBackupProcessed failed: %v", err)
	}
	if processed {
		t.Fatal("failed backup must remain retryable")
	}
}
