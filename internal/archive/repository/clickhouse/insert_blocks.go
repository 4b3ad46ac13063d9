package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/hydrib/landregistry-backend/internal/archive"
)

// InsertBlocks stores archived block rows. The table replaces by sequence,
// so re-inserting rows after a resumed export is harmless.
func (r *Repository) InsertBlocks(ctx context.Context, rows []archive.Row) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_blocks", err, start)
	}()

	if len(rows) == 0 {
		return nil
	}

	const query = `
INSERT INTO ledger_blocks (
	sequence,
	previous_hash,
	hash,
	kind,
	payload,
	created_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare blocks batch: %w", err)
	}

	for _, row := range rows {
		if err = batch.Append(
			row.Sequence,
			row.PreviousHash,
			row.Hash,
			row.Kind,
			row.Payload,
			row.CreatedAt,
		); err != nil {
			return fmt.Errorf("append block row: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert blocks: %w", err)
	}
	return nil
}
