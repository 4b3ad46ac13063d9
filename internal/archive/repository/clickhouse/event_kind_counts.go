package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// EventKindCounts aggregates archived blocks per event kind.
func (r *Repository) EventKindCounts(ctx context.Context) (map[string]uint64, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("event_kind_counts", err, start)
	}()

	const query = `
SELECT kind, count() AS blocks
FROM ledger_blocks FINAL
GROUP BY kind`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query event kind counts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	counts := make(map[string]uint64)
	for rows.Next() {
		var (
			kind  string
			count uint64
		)
		if err = rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scan event kind count: %w", err)
		}
		counts[kind] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event kind counts: %w", err)
	}

	return counts, nil
}
