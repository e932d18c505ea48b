package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"chartertrack/internal/backupfile"
	"chartertrack/internal/config"
	"chartertrack/internal/logging"
	"chartertrack/internal/services"
	"chartertrack/internal/store"
)

// BackupSource supplies backup identifiers in chronological order and the
// archives behind them. FetchBackup returns a local path to a validated ZIP.
type BackupSource interface {
	ListBackups(ctx context.Context) ([]string, error)
	FetchBackup(ctx context.Context, filename string) (string, error)
}

// Failure records one backup that could not be applied.
type Failure struct {
	Filename string
	Err      error
}

// RunSummary aggregates the outcome of one sync run.
type RunSummary struct {
	// Available counts all full backups the source offered.
	Available int
	// Selected counts backups left after sampling and the processed filter.
	Selected int
	// Processed holds per-backup stats in application order.
	Processed []ProcessStats
	// Failures lists backups that errored; they stay unprocessed for a
	// later run.
	Failures []Failure
}

// Runner drives the tracker over a backup source, strictly in order, with
// the next archive downloading while the current one is applied.
type Runner struct {
	tracker  *Tracker
	source   BackupSource
	store    *store.Store
	cfg      *config.Config
	logger   *slog.Logger
	lockPath string
}

// NewRunner wires a runner for one sync run.
func NewRunner(t *Tracker, source BackupSource, st *store.Store, cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		tracker:  t,
		source:   source,
		store:    st,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "sync"),
		lockPath: filepath.Join(filepath.Dir(cfg.Store.DBPath), "chartertrack.sync.lock"),
	}
}

type fetchResult struct {
	filename string
	path     string
	err      error
}

// Run lists, samples, and applies every pending backup. Per-backup failures
// are collected in the summary instead of stopping the run; Run itself only
// errors when the run cannot start or the context is canceled.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	lock := flock.New(r.lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another sync is already running")
	}
	defer func() { _ = lock.Unlock() }()

	ctx = services.WithRunID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, r.logger)

	if err := r.tracker.LoadState(ctx); err != nil {
		return nil, err
	}
	logger.Debug("tracker state loaded", logging.Int("present_charters", r.tracker.PresentCount()))

	available, err := r.source.ListBackups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	valid := available[:0:0]
	for _, name := range available {
		if backupfile.IsBackupFilename(name) {
			valid = append(valid, name)
		}
	}
	sort.Strings(valid)

	summary := &RunSummary{Available: len(valid)}

	sampled := backupfile.Sample(valid, r.cfg.Backups.Frequency)
	pending := make([]string, 0, len(sampled))
	for _, name := range sampled {
		processed, err := r.store.IsBackupProcessed(ctx, name)
		if err != nil {
			return nil, err
		}
		if !processed {
			pending = append(pending, name)
		}
	}
	summary.Selected = len(pending)
	logger.Info("sync starting",
		logging.Int("available", summary.Available),
		logging.Int("sampled", len(sampled)),
		logging.Int("pending", len(pending)),
	)
	if len(pending) == 0 {
		return summary, nil
	}

	// One goroutine downloads ahead while the current backup is applied.
	// The channel is unbuffered, so at most one archive waits in flight.
	fetches := make(chan fetchResult)
	go func() {
		defer close(fetches)
		for _, name := range pending {
			path, err := r.source.FetchBackup(ctx, name)
			select {
			case fetches <- fetchResult{filename: name, path: path, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()

	for result := range fetches {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if result.err != nil {
			logger.Error("backup fetch failed",
				logging.String(logging.FieldBackup, result.filename),
				logging.Error(result.err),
			)
			summary.Failures = append(summary.Failures, Failure{Filename: result.filename, Err: result.err})
			continue
		}

		stats, err := r.tracker.ProcessBackup(ctx, result.path, result.filename)
		if err != nil {
			if errors.Is(err, ErrAlreadyProcessed) {
				continue
			}
			logger.Error("backup processing failed",
				logging.String(logging.FieldBackup, result.filename),
				logging.Error(err),
			)
			summary.Failures = append(summary.Failures, Failure{Filename: result.filename, Err: err})
			continue
		}
		summary.Processed = append(summary.Processed, *stats)
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	logger.Info("sync finished",
		logging.Int("processed", len(summary.Processed)),
		logging.Int("failed", len(summary.Failures)),
	)
	return summary, nil
}
