package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chartertrack/internal/backupfile"
	"chartertrack/internal/config"
	"chartertrack/internal/existdb"
	"chartertrack/internal/logging"
	"chartertrack/internal/pathnorm"
	"chartertrack/internal/services"
	"chartertrack/internal/store"
)

// ErrAlreadyProcessed reports that a backup completed a full tracking
// transaction in an earlier run and was skipped.
var ErrAlreadyProcessed = errors.New("backup already processed")

// ProcessStats summarizes the application of one backup.
type ProcessStats struct {
	BackupID         int64
	Filename         string
	Date             time.Time
	CharterCount     int
	Appeared         int
	Disappeared      int
	Reappeared       int
	Discrepancies    int
	SkippedManifests int
	Elapsed          time.Duration
}

// Tracker applies backups to the charter lifecycle state. It owns the
// present-charter projection exclusively; no other component mutates it.
// Backups must be applied strictly in chronological order.
type Tracker struct {
	store    *store.Store
	basePath string
	logger   *slog.Logger

	current     map[string]int64
	stateLoaded bool
}

// New constructs a tracker bound to a store. The projection is loaded
// lazily on the first backup.
func New(st *store.Store, cfg *config.Config, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:    st,
		basePath: cfg.Backups.CharterBasePath,
		logger:   logging.NewComponentLogger(logger, "tracker"),
	}
}

// LoadState populates the present-charter projection from the store,
// replacing any prior state.
func (t *Tracker) LoadState(ctx context.Context) error {
	state, err := t.store.PresentCharters(ctx)
	if err != nil {
		return fmt.Errorf("load tracker state: %w", err)
	}
	t.current = state
	t.stateLoaded = true
	return nil
}

// PresentCount returns the number of charters the projection currently
// holds as present.
func (t *Tracker) PresentCount() int {
	return len(t.current)
}

func (t *Tracker) ensureState(ctx context.Context) error {
	if t.stateLoaded {
		return nil
	}
	return t.LoadState(ctx)
}

// ProcessBackup applies one backup archive. The filename must carry a
// parseable snapshot timestamp; a filename that does not is rejected before
// any mutation. Already-processed backups return ErrAlreadyProcessed.
func (t *Tracker) ProcessBackup(ctx context.Context, archivePath, filename string) (*ProcessStats, error) {
	start := time.Now()

	backupDate, err := backupfile.ParseTimestamp(filename)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "tracker", "parse backup filename", "", err)
	}

	if err := t.ensureState(ctx); err != nil {
		return nil, err
	}

	processed, err := t.store.IsBackupProcessed(ctx, filename)
	if err != nil {
		return nil, err
	}
	if processed {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyProcessed, filename)
	}

	// The backup row commits on its own so a failed run can retry against
	// the same id.
	backupID, err := t.store.UpsertBackup(ctx, filename, backupDate)
	if err != nil {
		return nil, err
	}

	ctx = services.WithBackup(ctx, filename)
	logger := logging.WithContext(ctx, t.logger)

	extraction, err := existdb.Extract(ctx, archivePath, t.basePath)
	if err != nil {
		return nil, err
	}
	logger.Debug("extracted charters",
		logging.Int("charters", len(extraction.Mapping)),
		logging.Int("skipped_manifests", extraction.SkippedManifests),
	)

	stats := &ProcessStats{
		BackupID:         backupID,
		Filename:         filename,
		Date:             backupDate,
		CharterCount:     len(extraction.Mapping),
		SkippedManifests: extraction.SkippedManifests,
	}

	tx, err := t.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// Projection changes stage here and apply only after the commit.
	pendingAdds := make(map[string]int64)
	var pendingRemoves []string

	discrepancies := extraction.Discrepancies()
	stats.Discrepancies = len(discrepancies)
	if len(discrepancies) > 0 {
		rows := make([]store.NewDiscrepancy, 0, len(discrepancies))
		for _, d := range discrepancies {
			rows = append(rows, store.NewDiscrepancy{
				BackupID:      backupID,
				Path:          d.Path,
				InContentsXML: d.InContentsXML,
				InZipEntries:  d.InZipEntries,
			})
		}
		if err := tx.InsertDiscrepancies(ctx, rows); err != nil {
			return nil, err
		}
	}

	var (
		lastSeenIDs []int64
		toCheck     []existdb.PathPair
	)
	for _, pair := range extraction.Mapping {
		if id, ok := t.current[pair.Normalized]; ok {
			lastSeenIDs = append(lastSeenIDs, id)
			continue
		}
		toCheck = append(toCheck, pair)
	}

	var known map[string]store.CharterRef
	if len(toCheck) > 0 {
		paths := make([]string, 0, len(toCheck))
		for _, pair := range toCheck {
			paths = append(paths, pair.Normalized)
		}
		if known, err = tx.FindChartersByPaths(ctx, paths); err != nil {
			return nil, err
		}
	}

	var (
		newCharters []store.NewCharter
		newPairs    []existdb.PathPair
		events      []store.NewEvent
	)
	for _, pair := range toCheck {
		ref, ok := known[pair.Normalized]
		if !ok {
			newCharters = append(newCharters, store.NewCharter{
				Path:       pair.Normalized,
				RawPath:    pair.Raw,
				ParentPath: pathnorm.ParentPath(pair.Normalized, t.basePath),
				BackupID:   backupID,
			})
			newPairs = append(newPairs, pair)
			continue
		}
		// A row the projection missed. Status missing means a genuine
		// reappearance; a present row is folded back in without an event.
		lastSeenIDs = append(lastSeenIDs, ref.ID)
		pendingAdds[pair.Normalized] = ref.ID
		if ref.Status == store.StatusMissing {
			stats.Reappeared++
			events = append(events, store.NewEvent{
				CharterID: ref.ID,
				BackupID:  backupID,
				Kind:      store.EventAppeared,
				Date:      backupDate,
			})
		}
	}

	if len(newCharters) > 0 {
		ids, err := tx.InsertCharters(ctx, newCharters)
		if err != nil {
			return nil, err
		}
		for i, id := range ids {
			pendingAdds[newPairs[i].Normalized] = id
			events = append(events, store.NewEvent{
				CharterID: id,
				BackupID:  backupID,
				Kind:      store.EventAppeared,
				Date:      backupDate,
			})
		}
	}
	stats.Appeared = len(newCharters)

	if len(lastSeenIDs) > 0 {
		if err := tx.UpdateLastSeen(ctx, lastSeenIDs, backupID); err != nil {
			return nil, err
		}
	}

	inBackup := make(map[string]struct{}, len(extraction.Mapping))
	for _, pair := range extraction.Mapping {
		inBackup[pair.Normalized] = struct{}{}
	}
	var missingIDs []int64
	for path, id := range t.current {
		if _, ok := inBackup[path]; ok {
			continue
		}
		missingIDs = append(missingIDs, id)
		pendingRemoves = append(pendingRemoves, path)
		events = append(events, store.NewEvent{
			CharterID: id,
			BackupID:  backupID,
			Kind:      store.EventDisappeared,
			Date:      backupDate,
		})
	}
	stats.Disappeared = len(missingIDs)
	if len(missingIDs) > 0 {
		if err := tx.MarkMissing(ctx, missingIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.InsertEvents(ctx, events); err != nil {
		return nil, err
	}

	stats.Elapsed = time.Since(start)
	if err := tx.MarkBackupProcessed(ctx, backupID, stats.CharterCount, stats.Elapsed); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit backup %s: %w", filename, err)
	}

	for path, id := range pendingAdds {
		t.current[path] = id
	}
	for _, path := range pendingRemoves {
		delete(t.current, path)
	}

	logger.Info("backup applied",
		logging.Int("charters", stats.CharterCount),
		logging.Int("appeared", stats.Appeared),
		logging.Int("disappeared", stats.Disappeared),
		logging.Int("reappeared", stats.Reappeared),
		logging.Int("discrepancies", stats.Discrepancies),
		logging.Duration("elapsed", stats.Elapsed),
	)
	return stats, nil
}
