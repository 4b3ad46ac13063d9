package archive

import (
	"context"
	"fmt"

	"github.com/hydrib/landregistry-backend/internal/land/model"
	"github.com/hydrib/landregistry-backend/pkg/workerpool"
	"go.uber.org/zap"
)

// chunkProcessor fans a fetched batch of blocks out over a worker pool,
// converting each chunk and handing the rows to the writer.
type chunkProcessor struct {
	workerCount int
	writer      RowWriter
	logger      *zap.Logger
	cancel      func()
}

func (p *chunkProcessor) SetCancel(cancel func()) {
	p.cancel = cancel
}

func (p *chunkProcessor) Process(ctx context.Context, blocks []model.Block) error {
	chunks := make([][]model.Block, 0, len(blocks)/exportChunkSize+1)
	for len(blocks) > 0 {
		n := exportChunkSize
		if n > len(blocks) {
			n = len(blocks)
		}
		chunks = append(chunks, blocks[:n])
		blocks = blocks[n:]
	}

	return workerpool.Process(ctx, p.workerCount, chunks, p.processChunk, p.cancel)
}

func (p *chunkProcessor) processChunk(ctx context.Context, chunk []model.Block) error {
	for _, block := range chunk {
		row, err := convertBlock(block)
		if err != nil {
			p.logger.Error("convert block failed", zap.Uint64("sequence", block.Sequence), zap.Error(err))
			return err
		}
		if err := p.writer.WriteRow(ctx, row); err != nil {
			p.logger.Error("write row failed", zap.Uint64("sequence", block.Sequence), zap.Error(err))
			return fmt.Errorf("write row %d: %w", block.Sequence, err)
		}
	}
	return nil
}
