package reports

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"chartertrack/internal/logging"
	"chartertrack/internal/pathnorm"
	"chartertrack/internal/store"
)

// Fetcher resolves a backup filename to a local archive path. The tracker's
// backup sources satisfy it.
type Fetcher interface {
	FetchBackup(ctx context.Context, filename string) (string, error)
}

// FailedItem records one missing charter the recovery pass could not pull
// out of its last-seen backup.
type FailedItem struct {
	Path   string
	Backup string
	Reason string
}

// RecoveryResult summarizes one recovery ZIP build.
type RecoveryResult struct {
	OutputPath string
	Extracted  int
	Failed     []FailedItem
}

// BuildRecoveryZip copies every missing charter's bytes from the backup it
// was last seen in into one output archive, stored under the charter's
// normalized path. Because the backup may spell the entry differently than
// the canonical identity, each charter is looked up by its historical path
// variants, most likely spelling first. Failures are collected per charter;
// only output-archive errors abort the build.
func BuildRecoveryZip(ctx context.Context, fetcher Fetcher, items []store.ExtractionItem, outputPath string, logger *slog.Logger) (*RecoveryResult, error) {
	logger = logging.NewComponentLogger(logger, "recovery")

	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	outFile, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create recovery archive %s: %w", outputPath, err)
	}
	defer outFile.Close()
	outZip := zip.NewWriter(outFile)

	byBackup := make(map[string][]store.ExtractionItem)
	for _, item := range items {
		byBackup[item.LastSeenFile] = append(byBackup[item.LastSeenFile], item)
	}
	backups := make([]string, 0, len(byBackup))
	for name := range byBackup {
		backups = append(backups, name)
	}
	sort.Strings(backups)

	result := &RecoveryResult{OutputPath: outputPath}
	for _, backupName := range backups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		group := byBackup[backupName]

		archivePath, err := fetcher.FetchBackup(ctx, backupName)
		if err != nil {
			logger.Warn("backup unavailable for recovery",
				logging.String(logging.FieldBackup, backupName),
				logging.Error(err),
			)
			for _, item := range group {
				result.Failed = append(result.Failed, FailedItem{
					Path:   item.Path,
					Backup: backupName,
					Reason: fmt.Sprintf("backup unavailable: %v", err),
				})
			}
			continue
		}

		if err := extractFromBackup(archivePath, backupName, group, outZip, result); err != nil {
			return nil, err
		}
	}

	if err := outZip.Close(); err != nil {
		return nil, fmt.Errorf("finalize recovery archive: %w", err)
	}
	if err := outFile.Close(); err != nil {
		return nil, fmt.Errorf("close recovery archive: %w", err)
	}
	logger.Info("recovery archive written",
		logging.Int("extracted", result.Extracted),
		logging.Int("failed", len(result.Failed)),
		logging.String("output", outputPath),
	)
	return result, nil
}

func extractFromBackup(archivePath, backupName string, items []store.ExtractionItem, outZip *zip.Writer, result *RecoveryResult) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		for _, item := range items {
			result.Failed = append(result.Failed, FailedItem{
				Path:   item.Path,
				Backup: backupName,
				Reason: fmt.Sprintf("open backup: %v", err),
			})
		}
		return nil
	}
	defer reader.Close()

	entries := make(map[string]*zip.File, len(reader.File))
	for _, file := range reader.File {
		entries[file.Name] = file
	}

	for _, item := range items {
		variants := pathnorm.Variants(item.Path, item.RawPath)

		var match *zip.File
		for _, candidate := range variants {
			if file, ok := entries[candidate]; ok {
				match = file
				break
			}
		}
		if match == nil {
			result.Failed = append(result.Failed, FailedItem{
				Path:   item.Path,
				Backup: backupName,
				Reason: fmt.Sprintf("no entry matched %d path variants", len(variants)),
			})
			continue
		}

		if err := copyEntry(match, item.Path, outZip); err != nil {
			return fmt.Errorf("copy %s from %s: %w", item.Path, backupName, err)
		}
		result.Extracted++
	}
	return nil
}

func copyEntry(src *zip.File, name string, outZip *zip.Writer) error {
	rc, err := src.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	dst, err := outZip.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, rc)
	return err
}
