package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// MaxSequence returns the highest archived block sequence, or 0 when the
// archive is empty. The exporter resumes from this point.
func (r *Repository) MaxSequence(ctx context.Context) (uint64, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("max_sequence", err, start)
	}()

	const query = `
SELECT coalesce(max(sequence), toUInt64(0)) AS max_sequence
FROM ledger_blocks`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("query max sequence: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	var sequence uint64
	if !rows.Next() {
		return 0, fmt.Errorf("max sequence not found")
	}

	if err = rows.Scan(&sequence); err != nil {
		return 0, fmt.Errorf("scan max sequence: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate max sequence: %w", err)
	}

	return sequence, nil
}
