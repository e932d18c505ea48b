package localdir_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"chartertrack/internal/logging"
	"chartertrack/internal/services"
	"chartertrack/internal/services/localdir"
	"chartertrack/internal/testsupport"
)

func TestListBackupsFiltersAndSorts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := cfg.Backups.LocalDir
	testsupport.WriteBackupArchive(t, filepath.Join(dir, "full20240108-0230.zip"), []testsupport.ArchiveFile{{Name: "b.xml", Body: "<x/>"}})
	testsupport.WriteBackupArchive(t, filepath.Join(dir, "full20240101-0230.zip"), []testsupport.ArchiveFile{{Name: "a.xml", Body: "<x/>"}})
	testsupport.WriteBackupArchive(t, filepath.Join(dir, "incremental-20240104.zip"), []testsupport.ArchiveFile{{Name: "c.xml", Body: "<x/>"}})

	source := localdir.New(cfg, logging.NewNop())
	names, err := source.ListBackups(context.Background())
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}

	want := []string{"full20240101-0230.zip", "full20240108-0230.zip"}
	if len(names) != len(want) {
		t.Fatalf("ListBackups = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ListBackups = %v, want %v", names, want)
		}
	}
}

func TestFetchBackupResolvesPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	archive := testsupport.WriteBackupArchive(t, filepath.Join(cfg.Backups.LocalDir, "full20240101-0230.zip"), []testsupport.ArchiveFile{{Name: "a.xml", Body: "<x/>"}})

	source := localdir.New(cfg, logging.NewNop())
	path, err := source.FetchBackup(context.Background(), "full20240101-0230.zip")
	if err != nil {
		t.Fatalf("FetchBackup failed: %v", err)
	}
	if path != archive {
		t.Fatalf("FetchBackup = %q, want %q", path, archive)
	}

	_, err = source.FetchBackup(context.Background(), "full20990101-0230.zip")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
