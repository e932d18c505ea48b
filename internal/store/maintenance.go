package store

import (
	"context"
	"fmt"
)

// Reset deletes all tracking data while keeping the schema in place.
func (s *Store) Reset(ctx context.Context) error {
	ctx = ensureContext(ctx)
	// Children first so foreign keys hold throughout.
	for _, table := range []string{"charter_events", "discrepancies", "charters", "backups"} {
		if err := s.execWithoutResultRetry(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}
