// Package localdir serves full backup archives from a local directory,
// sharing the backup source interface with the Azure client. It exists for
// development and offline runs against already-downloaded backups.
package localdir

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"chartertrack/internal/backupfile"
	"chartertrack/internal/config"
	"chartertrack/internal/logging"
	"chartertrack/internal/services"
)

// Source lists and resolves backup archives below one directory.
type Source struct {
	dir    string
	logger *slog.Logger
}

// New constructs a source rooted at the configured local backup directory.
func New(cfg *config.Config, logger *slog.Logger) *Source {
	return &Source{
		dir:    cfg.Backups.LocalDir,
		logger: logging.NewComponentLogger(logger, "localdir"),
	}
}

// ListBackups returns every full backup filename in the directory,
// chronologically sorted (the filename timestamp sorts lexically).
func (s *Source) ListBackups(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "localdir", "list backups", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if backupfile.IsBackupFilename(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	s.logger.Debug("listed local backups", logging.Int("count", len(names)))
	return names, nil
}

// FetchBackup resolves a backup filename to its local path. There is
// nothing to download; the file just has to exist.
func (s *Source) FetchBackup(ctx context.Context, filename string) (string, error) {
	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, "localdir", "fetch backup", filename, err)
		}
		return "", services.Wrap(services.ErrTransient, "localdir", "fetch backup", filename, err)
	}
	return path, nil
}
