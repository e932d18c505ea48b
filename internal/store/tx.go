package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpsertBackup records a backup row if it does not exist yet and returns its
// id. The row starts unprocessed; it commits independently of the tracking
// transaction so a failed backup can be retried against the same row.
func (s *Store) UpsertBackup(ctx context.Context, filename string, backupDate time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	if _, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO backups (filename, backup_date) VALUES (?, ?)`,
		filename,
		backupDate.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return 0, fmt.Errorf("insert backup: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM backups WHERE filename = ?`, filename).Scan(&id); err != nil {
		return 0, fmt.Errorf("select backup id: %w", err)
	}
	return id, nil
}

// Begin starts the per-backup mutation transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	ctx = ensureContext(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{tx: tx, batchSize: s.batchSize}, nil
}

// Tx wraps the single transaction that applies one backup's mutations.
type Tx struct {
	tx        *sql.Tx
	batchSize int
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction. Safe to call after Commit.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// FindChartersByPaths resolves existing charter rows for the given normalized
// paths, returning id and status keyed by path. Paths with no row are absent
// from the result.
func (t *Tx) FindChartersByPaths(ctx context.Context, paths []string) (map[string]CharterRef, error) {
	ctx = ensureContext(ctx)
	found := make(map[string]CharterRef, len(paths))
	for _, chunk := range chunkStrings(paths, t.batchSize) {
		query := `SELECT id, file_path, current_status FROM charters WHERE file_path IN (` + makePlaceholders(len(chunk)) + `)`
		args := make([]any, len(chunk))
		for i, p := range chunk {
			args[i] = p
		}
		rows, err := t.tx.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("find charters by paths: %w", err)
		}
		for rows.Next() {
			var (
				id     int64
				path   string
				status string
			)
			if err := rows.Scan(&id, &path, &status); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan charter ref: %w", err)
			}
			found[path] = CharterRef{ID: id, Status: CharterStatus(status)}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate charter refs: %w", err)
		}
		rows.Close()
	}
	return found, nil
}

// InsertCharters inserts brand-new charter rows as present, first and last
// seen at the originating backup. Returns the assigned ids in input order.
func (t *Tx) InsertCharters(ctx context.Context, charters []NewCharter) ([]int64, error) {
	ctx = ensureContext(ctx)
	if len(charters) == 0 {
		return nil, nil
	}
	stmt, err := t.tx.PrepareContext(ctx,
		`INSERT INTO charters (file_path, file_path_raw, parent_path, first_seen_backup_id, last_seen_backup_id, current_status)
         VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare charter insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(charters))
	for _, c := range charters {
		res, err := stmt.ExecContext(ctx,
			c.Path,
			nullableString(c.RawPath),
			c.ParentPath,
			c.BackupID,
			c.BackupID,
			StatusPresent,
		)
		if err != nil {
			return nil, fmt.Errorf("insert charter %q: %w", c.Path, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("charter insert id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// UpdateLastSeen stamps the given charters as seen (and present) at backupID.
func (t *Tx) UpdateLastSeen(ctx context.Context, charterIDs []int64, backupID int64) error {
	ctx = ensureContext(ctx)
	for _, chunk := range chunkInt64s(charterIDs, t.batchSize) {
		query := `UPDATE charters SET last_seen_backup_id = ?, current_status = ? WHERE id IN (` + makePlaceholders(len(chunk)) + `)`
		args := make([]any, 0, len(chunk)+2)
		args = append(args, backupID, StatusPresent)
		for _, id := range chunk {
			args = append(args, id)
		}
		if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update last seen: %w", err)
		}
	}
	return nil
}

// MarkMissing flips the given charters to missing.
func (t *Tx) MarkMissing(ctx context.Context, charterIDs []int64) error {
	ctx = ensureContext(ctx)
	for _, chunk := range chunkInt64s(charterIDs, t.batchSize) {
		query := `UPDATE charters SET current_status = ? WHERE id IN (` + makePlaceholders(len(chunk)) + `)`
		args := make([]any, 0, len(chunk)+1)
		args = append(args, StatusMissing)
		for _, id := range chunk {
			args = append(args, id)
		}
		if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("mark missing: %w", err)
		}
	}
	return nil
}

// InsertEvents appends lifecycle events.
func (t *Tx) InsertEvents(ctx context.Context, events []NewEvent) error {
	ctx = ensureContext(ctx)
	if len(events) == 0 {
		return nil
	}
	stmt, err := t.tx.PrepareContext(ctx,
		`INSERT INTO charter_events (charter_id, backup_id, event_type, event_date) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, e.CharterID, e.BackupID, e.Kind, e.Date.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return nil
}

// InsertDiscrepancies records paths found in exactly one of the two backup
// listings.
func (t *Tx) InsertDiscrepancies(ctx context.Context, discrepancies []NewDiscrepancy) error {
	ctx = ensureContext(ctx)
	if len(discrepancies) == 0 {
		return nil
	}
	stmt, err := t.tx.PrepareContext(ctx,
		`INSERT INTO discrepancies (backup_id, file_path, in_contents_xml, in_zip_entries) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare discrepancy insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range discrepancies {
		if _, err := stmt.ExecContext(ctx, d.BackupID, d.Path, boolToInt(d.InContentsXML), boolToInt(d.InZipEntries)); err != nil {
			return fmt.Errorf("insert discrepancy: %w", err)
		}
	}
	return nil
}

// MarkBackupProcessed finalizes the backup row inside the same transaction
// as the mutations it covers.
func (t *Tx) MarkBackupProcessed(ctx context.Context, backupID int64, charterCount int, elapsed time.Duration) error {
	ctx = ensureContext(ctx)
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE backups SET processed_at = ?, charter_count = ?, processing_time_sec = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		charterCount,
		elapsed.Seconds(),
		backupID,
	); err != nil {
		return fmt.Errorf("mark backup processed: %w", err)
	}
	return nil
}
