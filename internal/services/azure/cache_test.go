package azure_test

import (
	"os"
	"path/filepath"
	"testing"

	"chartertrack/internal/services/azure"
	"chartertrack/internal/testsupport"
)

func TestValidateArchive(t *testing.T) {
	dir := t.TempDir()

	good := testsupport.WriteBackupArchive(t, filepath.Join(dir, "full20240101-0230.zip"), []testsupport.ArchiveFile{
		{Name: "db/doc.xml", Body: "<x/>"},
	})
	if err := azure.ValidateArchive(good); err != nil {
		t.Fatalf("intact archive rejected: %v", err)
	}

	corrupt := filepath.Join(dir, "full20240108-0230.zip")
	if err := os.WriteFile(corrupt, []byte("truncated download"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if err := azure.ValidateArchive(corrupt); err == nil {
		t.Fatal("corrupt archive must be rejected")
	}
}

func TestListAndClearCache(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteBackupArchive(t, filepath.Join(dir, "full20240108-0230.zip"), []testsupport.ArchiveFile{{Name: "b.xml", Body: "<x/>"}})
	testsupport.WriteBackupArchive(t, filepath.Join(dir, "full20240101-0230.zip"), []testsupport.ArchiveFile{{Name: "a.xml", Body: "<x/>"}})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	entries, err := azure.ListCache(dir)
	if err != nil {
		t.Fatalf("ListCache failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 cached archives, got %#v", entries)
	}
	if entries[0].Name != "full20240101-0230.zip" {
		t.Fatalf("expected name-sorted entries, got %q first", entries[0].Name)
	}
	if entries[0].Size <= 0 {
		t.Fatalf("expected positive size, got %d", entries[0].Size)
	}

	removed, freed, err := azure.ClearCache(dir)
	if err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	if removed != 2 || freed <= 0 {
		t.Fatalf("unexpected clear result: removed=%d freed=%d", removed, freed)
	}

	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Fatalf("non-archive files must survive a clear: %v", err)
	}
	entries, err = azure.ListCache(dir)
	if err != nil {
		t.Fatalf("ListCache after clear failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty cache, got %#v", entries)
	}
}

func TestListCacheMissingDirIsEmpty(t *testing.T) {
	entries, err := azure.ListCache(filepath.Join(t.TempDir(), "never-created"))
	if err != nil {
		t.Fatalf("ListCache failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %#v", entries)
	}
}
