package reports_test

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chartertrack/internal/logging"
	"chartertrack/internal/reports"
	"chartertrack/internal/store"
	"chartertrack/internal/testsupport"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteMissingCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	missing := []store.MissingCharter{
		{
			Path:          "db/base/AT-One/a.xml",
			RawPath:       "db/base/AT-One/a%20.xml",
			ParentPath:    "AT-One",
			FirstSeenFile: "full20240101-0230.zip",
			LastSeenFile:  "full20240108-0230.zip",
			LastSeenDate:  time.Date(2024, 1, 8, 2, 30, 0, 0, time.UTC),
		},
	}
	if err := reports.WriteMissingCSV(path, missing); err != nil {
		t.Fatalf("WriteMissingCSV failed: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(rows))
	}
	if rows[0][0] != "file_path" || rows[0][5] != "last_seen_date" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "db/base/AT-One/a.xml" || rows[1][4] != "full20240108-0230.zip" {
		t.Fatalf("unexpected row: %v", rows[1])
	}
}

func TestWriteParentCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "by-parent.csv")
	groups := []store.ParentMissing{
		{ParentPath: "AT-One", MissingCount: 3, TotalCount: 10},
		{ParentPath: "", MissingCount: 1, TotalCount: 1},
	}
	if err := reports.WriteParentCSV(path, groups); err != nil {
		t.Fatalf("WriteParentCSV failed: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "AT-One" || rows[1][1] != "3" || rows[1][2] != "10" {
		t.Fatalf("unexpected row: %v", rows[1])
	}
}

type dirFetcher struct {
	dir string
}

func (f dirFetcher) FetchBackup(_ context.Context, filename string) (string, error) {
	path := filepath.Join(f.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("backup %s: %w", filename, err)
	}
	return path, nil
}

func TestBuildRecoveryZipUsesVariantLookup(t *testing.T) {
	dir := t.TempDir()

	// The backup stored the charter percent-encoded; the tracked identity is
	// the decoded form, so only the variant list can find the entry.
	testsupport.WriteBackupArchive(t, filepath.Join(dir, "full20240101-0230.zip"), []testsupport.ArchiveFile{
		{Name: "db/base/AT-One/G%C3%B6ttweig.xml", Body: testsupport.CharterXML("g")},
		{Name: "db/base/AT-One/plain.xml", Body: testsupport.CharterXML("p")},
	})

	items := []store.ExtractionItem{
		{Path: "db/base/AT-One/Göttweig.xml", RawPath: "db/base/AT-One/G%C3%B6ttweig.xml", LastSeenFile: "full20240101-0230.zip"},
		{Path: "db/base/AT-One/plain.xml", RawPath: "", LastSeenFile: "full20240101-0230.zip"},
		{Path: "db/base/AT-One/vanished.xml", RawPath: "", LastSeenFile: "full20240101-0230.zip"},
	}

	outputPath := filepath.Join(dir, "recovery.zip")
	result, err := reports.BuildRecoveryZip(context.Background(), dirFetcher{dir: dir}, items, outputPath, logging.NewNop())
	if err != nil {
		t.Fatalf("BuildRecoveryZip failed: %v", err)
	}

	if result.Extracted != 2 {
		t.Fatalf("expected 2 extracted, got %d", result.Extracted)
	}
	if len(result.Failed) != 1 || result.Failed[0].Path != "db/base/AT-One/vanished.xml" {
		t.Fatalf("unexpected failures: %#v", result.Failed)
	}

	reader, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("open recovery archive: %v", err)
	}
	defer reader.Close()

	names := make(map[string]bool, len(reader.File))
	for _, file := range reader.File {
		names[file.Name] = true
	}
	// Recovered entries are stored under the normalized identity.
	if !names["db/base/AT-One/Göttweig.xml"] || !names["db/base/AT-One/plain.xml"] {
		t.Fatalf("unexpected recovery entries: %v", names)
	}
}

func TestBuildRecoveryZipCollectsUnavailableBackups(t *testing.T) {
	dir := t.TempDir()
	items := []store.ExtractionItem{
		{Path: "db/base/a.xml", LastSeenFile: "full20240101-0230.zip"},
		{Path: "db/base/b.xml", LastSeenFile: "full20240101-0230.zip"},
	}

	result, err := reports.BuildRecoveryZip(context.Background(), dirFetcher{dir: dir}, items, filepath.Join(dir, "recovery.zip"), logging.NewNop())
	if err != nil {
		t.Fatalf("BuildRecoveryZip failed: %v", err)
	}
	if result.Extracted != 0 || len(result.Failed) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestWriteFailedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.csv")
	failed := []reports.FailedItem{
		{Path: "db/base/a.xml", Backup: "full20240101-0230.zip", Reason: "no entry matched 6 path variants"},
	}
	if err := reports.WriteFailedCSV(path, failed); err != nil {
		t.Fatalf("WriteFailedCSV failed: %v", err)
	}
	rows := readCSV(t, path)
	if len(rows) != 2 || rows[1][2] != "no entry matched 6 path variants" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}
