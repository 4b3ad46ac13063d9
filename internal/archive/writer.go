package archive

import (
	"context"

	"github.com/hydrib/landregistry-backend/pkg/batcher"
	"go.uber.org/zap"
)

// rowWriter buffers archive rows and flushes them in rate-limited batches.
// A failed flush is only logged; the exporter resumes from MaxSequence on
// the next iteration, so dropped rows are re-exported rather than lost.
type rowWriter struct {
	batcher *batcher.Batcher[Row]
}

func newRowWriter(repo ClickhouseRepository, logger *zap.Logger) *rowWriter {
	return &rowWriter{
		batcher: batcher.New(
			logger.Named("rowWriter"),
			repo.InsertBlocks,
			rowFlushThreshold,
			rowFlushInterval,
			rowFlushRPS,
		),
	}
}

func (w *rowWriter) Start(ctx context.Context) {
	w.batcher.Start(ctx)
}

func (w *rowWriter) Stop() {
	w.batcher.Stop()
}

func (w *rowWriter) WriteRow(ctx context.Context, row Row) error {
	return w.batcher.Add(ctx, row)
}
