package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// IsBackupProcessed reports whether a backup completed a full tracking
// transaction in an earlier run.
func (s *Store) IsBackupProcessed(ctx context.Context, filename string) (bool, error) {
	ctx = ensureContext(ctx)
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM backups WHERE filename = ? AND processed_at IS NOT NULL`,
		filename,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check backup processed: %w", err)
	}
	return count > 0, nil
}

// PresentCharters loads the normalized path to charter id projection for
// every charter currently marked present.
func (s *Store) PresentCharters(ctx context.Context) (map[string]int64, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_path FROM charters WHERE current_status = ?`, StatusPresent)
	if err != nil {
		return nil, fmt.Errorf("load present charters: %w", err)
	}
	defer rows.Close()

	state := make(map[string]int64)
	for rows.Next() {
		var (
			id   int64
			path string
		)
		if err := rows.Scan(&id, &path); err != nil {
			return nil, fmt.Errorf("scan present charter: %w", err)
		}
		state[path] = id
	}
	return state, rows.Err()
}

// CharterByPath fetches a charter row by its normalized path. Returns nil
// when no charter exists for the path.
func (s *Store) CharterByPath(ctx context.Context, path string) (*Charter, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, file_path, file_path_raw, parent_path, first_seen_backup_id, last_seen_backup_id, current_status
         FROM charters WHERE file_path = ?`, path)

	var (
		c       Charter
		rawPath sql.NullString
		status  string
	)
	err := row.Scan(&c.ID, &c.Path, &rawPath, &c.ParentPath, &c.FirstSeenBackupID, &c.LastSeenBackupID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get charter: %w", err)
	}
	c.RawPath = rawPath.String
	c.Status = CharterStatus(status)
	return &c, nil
}

// EventsForCharter returns a charter's lifecycle events in backup
// chronological order.
func (s *Store) EventsForCharter(ctx context.Context, charterID int64) ([]Event, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.charter_id, e.backup_id, e.event_type, e.event_date
         FROM charter_events e
         JOIN backups b ON e.backup_id = b.id
         WHERE e.charter_id = ?
         ORDER BY b.backup_date, e.id`, charterID)
	if err != nil {
		return nil, fmt.Errorf("load charter events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e       Event
			kind    string
			dateRaw string
		)
		if err := rows.Scan(&e.ID, &e.CharterID, &e.BackupID, &kind, &dateRaw); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Kind = EventKind(kind)
		if date, err := parseTimeString(dateRaw); err == nil {
			e.Date = date
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DiscrepanciesForBackup returns the single-source paths recorded for one
// backup.
func (s *Store) DiscrepanciesForBackup(ctx context.Context, backupID int64) ([]Discrepancy, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, backup_id, file_path, in_contents_xml, in_zip_entries
         FROM discrepancies WHERE backup_id = ? ORDER BY file_path`, backupID)
	if err != nil {
		return nil, fmt.Errorf("load discrepancies: %w", err)
	}
	defer rows.Close()

	var discrepancies []Discrepancy
	for rows.Next() {
		var (
			d          Discrepancy
			inContents int
			inEntries  int
		)
		if err := rows.Scan(&d.ID, &d.BackupID, &d.Path, &inContents, &inEntries); err != nil {
			return nil, fmt.Errorf("scan discrepancy: %w", err)
		}
		d.InContentsXML = inContents != 0
		d.InZipEntries = inEntries != 0
		discrepancies = append(discrepancies, d)
	}
	return discrepancies, rows.Err()
}

// Backups lists all known backups in chronological order.
func (s *Store) Backups(ctx context.Context) ([]Backup, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, backup_date, processed_at, charter_count, processing_time_sec
         FROM backups ORDER BY backup_date`)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var backups []Backup
	for rows.Next() {
		backup, err := scanBackup(rows)
		if err != nil {
			return nil, err
		}
		backups = append(backups, backup)
	}
	return backups, rows.Err()
}

// BackupByFilename fetches one backup row. Returns nil when unknown.
func (s *Store) BackupByFilename(ctx context.Context, filename string) (*Backup, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, backup_date, processed_at, charter_count, processing_time_sec
         FROM backups WHERE filename = ?`, filename)
	backup, err := scanBackup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &backup, nil
}

func scanBackup(scanner interface{ Scan(dest ...any) error }) (Backup, error) {
	var (
		b              Backup
		dateRaw        string
		processedRaw   sql.NullString
		charterCount   sql.NullInt64
		processingTime sql.NullFloat64
	)
	if err := scanner.Scan(&b.ID, &b.Filename, &dateRaw, &processedRaw, &charterCount, &processingTime); err != nil {
		return Backup{}, err
	}
	if date, err := parseTimeString(dateRaw); err == nil {
		b.BackupDate = date
	}
	if processedRaw.Valid {
		if processed, err := parseTimeString(processedRaw.String); err == nil {
			b.ProcessedAt = &processed
		}
	}
	b.CharterCount = charterCount.Int64
	b.ProcessingTime = processingTime.Float64
	return b, nil
}

// Stats aggregates overall tracking numbers, excluding charters under the
// given parent paths.
func (s *Store) Stats(ctx context.Context, ignoredParents []string) (Stats, error) {
	ctx = ensureContext(ctx)
	var stats Stats

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM backups WHERE processed_at IS NOT NULL`,
	).Scan(&stats.ProcessedBackups); err != nil {
		return Stats{}, fmt.Errorf("count processed backups: %w", err)
	}

	totalQuery := `SELECT COUNT(1) FROM charters`
	totalArgs := []any(nil)
	if len(ignoredParents) > 0 {
		totalQuery += ` WHERE parent_path NOT IN (` + makePlaceholders(len(ignoredParents)) + `)`
		totalArgs = stringArgs(ignoredParents)
	}
	if err := s.db.QueryRowContext(ctx, totalQuery, totalArgs...).Scan(&stats.TotalCharters); err != nil {
		return Stats{}, fmt.Errorf("count charters: %w", err)
	}

	missingQuery := `SELECT COUNT(1) FROM charters WHERE current_status = ?`
	missingArgs := []any{StatusMissing}
	if len(ignoredParents) > 0 {
		missingQuery += ` AND parent_path NOT IN (` + makePlaceholders(len(ignoredParents)) + `)`
		missingArgs = append(missingArgs, stringArgs(ignoredParents)...)
	}
	if err := s.db.QueryRowContext(ctx, missingQuery, missingArgs...).Scan(&stats.MissingCharters); err != nil {
		return Stats{}, fmt.Errorf("count missing charters: %w", err)
	}

	eventQuery := `SELECT COUNT(1) FROM charter_events e WHERE e.event_type = ?`
	eventArgs := []any{EventDisappeared}
	if len(ignoredParents) > 0 {
		eventQuery = `SELECT COUNT(1) FROM charter_events e
            JOIN charters c ON e.charter_id = c.id
            WHERE e.event_type = ? AND c.parent_path NOT IN (` + makePlaceholders(len(ignoredParents)) + `)`
		eventArgs = append(eventArgs, stringArgs(ignoredParents)...)
	}
	if err := s.db.QueryRowContext(ctx, eventQuery, eventArgs...).Scan(&stats.DisappearanceEvents); err != nil {
		return Stats{}, fmt.Errorf("count disappearance events: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM discrepancies`,
	).Scan(&stats.Discrepancies); err != nil {
		return Stats{}, fmt.Errorf("count discrepancies: %w", err)
	}

	return stats, nil
}

// MissingCharters lists charters currently marked missing, most recently
// seen first. A limit of zero or less returns everything.
func (s *Store) MissingCharters(ctx context.Context, ignoredParents []string, limit int) ([]MissingCharter, error) {
	ctx = ensureContext(ctx)
	query := `SELECT c.id, c.file_path, c.file_path_raw, c.parent_path,
            COALESCE(b1.filename, ''), COALESCE(b2.filename, ''), COALESCE(b2.backup_date, '')
        FROM charters c
        LEFT JOIN backups b1 ON c.first_seen_backup_id = b1.id
        LEFT JOIN backups b2 ON c.last_seen_backup_id = b2.id
        WHERE c.current_status = ?`
	args := []any{StatusMissing}
	if len(ignoredParents) > 0 {
		query += ` AND c.parent_path NOT IN (` + makePlaceholders(len(ignoredParents)) + `)`
		args = append(args, stringArgs(ignoredParents)...)
	}
	query += ` ORDER BY b2.backup_date DESC, c.file_path`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list missing charters: %w", err)
	}
	defer rows.Close()

	var missing []MissingCharter
	for rows.Next() {
		var (
			m       MissingCharter
			rawPath sql.NullString
			dateRaw string
		)
		if err := rows.Scan(&m.ID, &m.Path, &rawPath, &m.ParentPath, &m.FirstSeenFile, &m.LastSeenFile, &dateRaw); err != nil {
			return nil, fmt.Errorf("scan missing charter: %w", err)
		}
		m.RawPath = rawPath.String
		if date, err := parseTimeString(dateRaw); err == nil {
			m.LastSeenDate = date
		}
		missing = append(missing, m)
	}
	return missing, rows.Err()
}

// MissingByParent aggregates missing charters per parent collection path,
// largest groups first.
func (s *Store) MissingByParent(ctx context.Context, ignoredParents []string) ([]ParentMissing, error) {
	ctx = ensureContext(ctx)
	query := `SELECT parent_path,
            SUM(CASE WHEN current_status = ? THEN 1 ELSE 0 END) AS missing,
            COUNT(1) AS total
        FROM charters`
	args := []any{StatusMissing}
	if len(ignoredParents) > 0 {
		query += ` WHERE parent_path NOT IN (` + makePlaceholders(len(ignoredParents)) + `)`
		args = append(args, stringArgs(ignoredParents)...)
	}
	query += ` GROUP BY parent_path HAVING missing > 0 ORDER BY missing DESC, parent_path`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate missing by parent: %w", err)
	}
	defer rows.Close()

	var groups []ParentMissing
	for rows.Next() {
		var g ParentMissing
		if err := rows.Scan(&g.ParentPath, &g.MissingCount, &g.TotalCount); err != nil {
			return nil, fmt.Errorf("scan parent group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// MissingForExtraction lists missing charters with the backup each was last
// seen in, ordered so the recovery extractor opens each archive once.
func (s *Store) MissingForExtraction(ctx context.Context, ignoredParents []string) ([]ExtractionItem, error) {
	ctx = ensureContext(ctx)
	query := `SELECT c.file_path, COALESCE(c.file_path_raw, ''), b.filename
        FROM charters c
        JOIN backups b ON c.last_seen_backup_id = b.id
        WHERE c.current_status = ?`
	args := []any{StatusMissing}
	if len(ignoredParents) > 0 {
		query += ` AND c.parent_path NOT IN (` + makePlaceholders(len(ignoredParents)) + `)`
		args = append(args, stringArgs(ignoredParents)...)
	}
	query += ` ORDER BY b.backup_date, c.file_path`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list extraction items: %w", err)
	}
	defer rows.Close()

	var items []ExtractionItem
	for rows.Next() {
		var item ExtractionItem
		if err := rows.Scan(&item.Path, &item.RawPath, &item.LastSeenFile); err != nil {
			return nil, fmt.Errorf("scan extraction item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
