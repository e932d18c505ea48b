package reports

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"chartertrack/internal/store"
)

// TimestampedPath builds an output path in dir named prefix-YYYYMMDD-HHMMSS.ext.
func TimestampedPath(dir, prefix, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.%s", prefix, time.Now().Format("20060102-150405"), ext))
}

// WriteMissingCSV writes the missing-charter report.
func WriteMissingCSV(path string, missing []store.MissingCharter) error {
	return writeCSV(path, []string{
		"file_path", "file_path_raw", "parent_path", "first_seen_backup", "last_seen_backup", "last_seen_date",
	}, len(missing), func(i int) []string {
		m := missing[i]
		lastSeen := ""
		if !m.LastSeenDate.IsZero() {
			lastSeen = m.LastSeenDate.UTC().Format(time.RFC3339)
		}
		return []string{m.Path, m.RawPath, m.ParentPath, m.FirstSeenFile, m.LastSeenFile, lastSeen}
	})
}

// WriteParentCSV writes the missing-by-parent aggregation.
func WriteParentCSV(path string, groups []store.ParentMissing) error {
	return writeCSV(path, []string{
		"parent_path", "missing_count", "total_count",
	}, len(groups), func(i int) []string {
		g := groups[i]
		return []string{g.ParentPath, strconv.Itoa(g.MissingCount), strconv.Itoa(g.TotalCount)}
	})
}

// WriteFailedCSV records recovery extractions that found no matching entry.
func WriteFailedCSV(path string, failed []FailedItem) error {
	return writeCSV(path, []string{
		"path", "backup", "error",
	}, len(failed), func(i int) []string {
		f := failed[i]
		return []string{f.Path, f.Backup, f.Reason}
	})
}

func writeCSV(path string, header []string, rows int, row func(int) []string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for i := 0; i < rows; i++ {
		if err := writer.Write(row(i)); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return file.Close()
}
