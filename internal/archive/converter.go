package archive

import (
	"fmt"

	"github.com/hydrib/landregistry-backend/internal/land/ledger"
	"github.com/hydrib/landregistry-backend/internal/land/model"
)

// convertBlock flattens a chain block into its archive row. The payload is
// the same canonical serialization the block hash was computed over.
func convertBlock(block model.Block) (Row, error) {
	canonical, err := ledger.Canonicalize(block.Payload)
	if err != nil {
		return Row{}, fmt.Errorf("convert block %d: %w", block.Sequence, err)
	}

	return Row{
		Sequence:     block.Sequence,
		PreviousHash: block.PreviousHash,
		Hash:         block.Hash,
		Kind:         string(block.Payload.Kind()),
		Payload:      string(canonical),
		CreatedAt:    block.CreatedAt,
	}, nil
}
