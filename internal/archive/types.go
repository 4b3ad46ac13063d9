// Package archive mirrors the ledger into ClickHouse for analytics. The
// mirror is a read-side copy only: the exporter always resumes from the
// highest archived sequence, so re-exporting after a failed flush is
// idempotent and the authoritative chain is never consulted the other way.
package archive

import (
	"context"
	"time"

	"github.com/hydrib/landregistry-backend/internal/land/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// Row is one archived block as stored in ClickHouse. Payload carries the
// canonical JSON bytes the hash was computed over, so integrity can be
// re-checked against the mirror alone.
type Row struct {
	Sequence     uint64
	PreviousHash string
	Hash         string
	Kind         string
	Payload      string
	CreatedAt    time.Time
}

type (
	// LedgerSource reads committed blocks past a sequence from the
	// authoritative chain.
	LedgerSource interface {
		BlocksAfter(sequence uint64, limit int) ([]model.Block, error)
	}

	// ClickhouseRepository is the archive sink.
	ClickhouseRepository interface {
		MaxSequence(ctx context.Context) (uint64, error)
		InsertBlocks(ctx context.Context, rows []Row) error
	}

	// RowWriter buffers rows toward the sink.
	RowWriter interface {
		Start(ctx context.Context)
		Stop()
		WriteRow(ctx context.Context, row Row) error
	}

	// ChunkProcessor converts and writes a batch of blocks.
	ChunkProcessor interface {
		Process(ctx context.Context, blocks []model.Block) error
		SetCancel(cancel func())
	}

	ExporterMetrics interface {
		ObserveFetchTail(err error, started time.Time)
		ObserveExportBatch(err error, blocks int, started time.Time)
	}
)
