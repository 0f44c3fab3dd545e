package runstore

import (
	"context"
	"fmt"
)

// CueStatusCounts aggregates cue counts per status for a run.
func (s *Store) CueStatusCounts(ctx context.Context, runID int64) (map[CueStatus]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(1) FROM cue_states WHERE run_id = ? GROUP BY status`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("cue status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[CueStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[CueStatus(status)] = count
	}
	return counts, rows.Err()
}

// Clear removes all runs and cue states from the database. No CLI command
// calls it.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM cue_states`); err != nil {
		return fmt.Errorf("clear cue states: %w", err)
	}
	if _, err := s.execWithRetry(ctx, `DELETE FROM runs`); err != nil {
		return fmt.Errorf("clear runs: %w", err)
	}
	return nil
}
