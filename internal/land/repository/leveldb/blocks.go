package leveldb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hydrib/landregistry-backend/internal/land/model"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// storedBlock is the persisted block layout. The payload is kept as raw JSON
// tagged with its kind so it round-trips into the concrete event type.
type storedBlock struct {
	Sequence     uint64          `json:"sequence"`
	PreviousHash string          `json:"previous_hash"`
	Hash         string          `json:"hash"`
	Kind         model.EventKind `json:"kind"`
	Payload      json.RawMessage `json:"payload"`
	CreatedAt    time.Time       `json:"created_at"`
}

func blockKey(sequence uint64) []byte {
	return []byte(fmt.Sprintf("%s%016d", blockKeyPrefix, sequence))
}

// AppendBlock stages a block into the batch. There is no update or delete
// counterpart; blocks are only ever written once.
func (r *Repository) AppendBlock(batch *leveldb.Batch, block model.Block) error {
	payload, err := json.Marshal(block.Payload)
	if err != nil {
		return fmt.Errorf("marshal block %d payload: %w", block.Sequence, err)
	}

	value, err := json.Marshal(storedBlock{
		Sequence:     block.Sequence,
		PreviousHash: block.PreviousHash,
		Hash:         block.Hash,
		Kind:         block.Payload.Kind(),
		Payload:      payload,
		CreatedAt:    block.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal block %d: %w", block.Sequence, err)
	}

	batch.Put(blockKey(block.Sequence), value)
	return nil
}

// TailBlock returns the block with the highest sequence, or ok=false when the
// chain is empty.
func (r *Repository) TailBlock() (model.Block, bool, error) {
	started := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("tail_block", err, started)
	}()

	iter := r.db.NewIterator(util.BytesPrefix([]byte(blockKeyPrefix)), nil)
	defer iter.Release()

	if !iter.Last() {
		err = iter.Error()
		return model.Block{}, false, err
	}

	block, decodeErr := decodeBlock(iter.Value())
	if decodeErr != nil {
		err = decodeErr
		return model.Block{}, false, err
	}
	err = iter.Error()
	if err != nil {
		return model.Block{}, false, err
	}
	return block, true, nil
}

// Blocks returns every block oldest-first, read from a committed snapshot so
// a concurrent append is either fully visible or not at all.
func (r *Repository) Blocks() ([]model.Block, error) {
	started := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("blocks", err, started)
	}()

	snap, err := r.db.GetSnapshot()
	if err != nil {
		return nil, fmt.Errorf("acquire snapshot: %w", err)
	}
	defer snap.Release()

	iter := snap.NewIterator(util.BytesPrefix([]byte(blockKeyPrefix)), nil)
	defer iter.Release()

	var blocks []model.Block
	for iter.Next() {
		block, decodeErr := decodeBlock(iter.Value())
		if decodeErr != nil {
			err = decodeErr
			return nil, err
		}
		blocks = append(blocks, block)
	}
	if err = iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}
	return blocks, nil
}

// BlocksAfter returns blocks with sequence strictly greater than the given
// one, oldest-first, up to limit. Used by the archive exporter to resume.
func (r *Repository) BlocksAfter(sequence uint64, limit int) ([]model.Block, error) {
	started := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("blocks_after", err, started)
	}()

	snap, err := r.db.GetSnapshot()
	if err != nil {
		return nil, fmt.Errorf("acquire snapshot: %w", err)
	}
	defer snap.Release()

	iter := snap.NewIterator(&util.Range{
		Start: blockKey(sequence + 1),
		Limit: []byte(blockKeyPrefix + "~"),
	}, nil)
	defer iter.Release()

	var blocks []model.Block
	for iter.Next() {
		if limit > 0 && len(blocks) >= limit {
			break
		}
		block, decodeErr := decodeBlock(iter.Value())
		if decodeErr != nil {
			err = decodeErr
			return nil, err
		}
		blocks = append(blocks, block)
	}
	if err = iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate blocks after %d: %w", sequence, err)
	}
	return blocks, nil
}

func decodeBlock(value []byte) (model.Block, error) {
	var stored storedBlock
	if err := json.Unmarshal(value, &stored); err != nil {
		return model.Block{}, fmt.Errorf("decode block: %w", err)
	}

	payload, err := model.DecodeEvent(stored.Kind, stored.Payload)
	if err != nil {
		return model.Block{}, fmt.Errorf("decode block %d: %w", stored.Sequence, err)
	}

	return model.Block{
		Sequence:     stored.Sequence,
		PreviousHash: stored.PreviousHash,
		Hash:         stored.Hash,
		Payload:      payload,
		CreatedAt:    stored.CreatedAt,
	}, nil
}
