package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hydrib/landregistry-backend/internal/land/model"
	"github.com/syndtr/goleveldb/leveldb"
	"go.uber.org/zap"
)

// BlockStore is the persistence the chain appends to. AppendBlock stages the
// block into a batch; Commit applies the batch atomically.
type BlockStore interface {
	TailBlock() (model.Block, bool, error)
	Blocks() ([]model.Block, error)
	AppendBlock(batch *leveldb.Batch, block model.Block) error
	Commit(batch *leveldb.Batch) error
}

// Chain is the append-only ledger. The public surface exposes no way to
// update or delete a block; immutability is structural rather than policy.
//
// The sequence "read tail hash, compute, write" is a critical section: a
// single mutex serializes appends so no two blocks can claim the same
// sequence or previous hash.
type Chain struct {
	mu     sync.Mutex
	store  BlockStore
	logger *zap.Logger
}

// NewChain builds a Chain over the given store.
func NewChain(store BlockStore, logger *zap.Logger) *Chain {
	return &Chain{store: store, logger: logger.Named("ledger")}
}

// Append computes and persists the next block for the given event. The
// caller-supplied companion stages the registry mutation that must land in
// the same atomic write; either both commit or neither does. Canonicalization
// failures abort before anything is staged.
func (c *Chain) Append(ctx context.Context, event model.Event, companion func(batch *leveldb.Batch) error) (model.Block, error) {
	if err := ctx.Err(); err != nil {
		return model.Block{}, err
	}

	canonical, err := Canonicalize(event)
	if err != nil {
		return model.Block{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	previousHash := GenesisHash
	sequence := uint64(1)
	if tail, ok, err := c.store.TailBlock(); err != nil {
		return model.Block{}, fmt.Errorf("read chain tail: %w", err)
	} else if ok {
		previousHash = tail.Hash
		sequence = tail.Sequence + 1
	}

	block := model.Block{
		Sequence:     sequence,
		PreviousHash: previousHash,
		Hash:         Digest(previousHash, canonical),
		Payload:      event,
		CreatedAt:    time.Now().UTC(),
	}

	batch := new(leveldb.Batch)
	if err := c.store.AppendBlock(batch, block); err != nil {
		return model.Block{}, fmt.Errorf("stage block %d: %w", block.Sequence, err)
	}
	if companion != nil {
		if err := companion(batch); err != nil {
			return model.Block{}, err
		}
	}
	if err := c.store.Commit(batch); err != nil {
		return model.Block{}, fmt.Errorf("commit block %d: %w", block.Sequence, err)
	}

	c.logger.Debug("block appended",
		zap.Uint64("sequence", block.Sequence),
		zap.String("kind", string(event.Kind())),
		zap.String("hash", block.Hash),
	)
	return block, nil
}

// Tail returns the most recently appended block, or ok=false on an empty
// chain.
func (c *Chain) Tail(ctx context.Context) (model.Block, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Block{}, false, err
	}
	return c.store.TailBlock()
}

// Replay returns all blocks oldest-first from a consistent committed
// snapshot. It never mutates and may run concurrently with appends.
func (c *Chain) Replay(ctx context.Context) ([]model.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.store.Blocks()
}

// VerifyIntegrity recomputes every block hash and checks previous-hash
// linkage and sequence continuity across the whole chain. It fails fast with
// the first broken sequence and must never repair anything.
func (c *Chain) VerifyIntegrity(ctx context.Context) error {
	blocks, err := c.Replay(ctx)
	if err != nil {
		return err
	}

	previousHash := GenesisHash
	for i, block := range blocks {
		if block.Sequence != uint64(i)+1 {
			return &model.ChainIntegrityError{Sequence: block.Sequence, Reason: fmt.Sprintf("expected sequence %d", i+1)}
		}
		if block.PreviousHash != previousHash {
			return &model.ChainIntegrityError{Sequence: block.Sequence, Reason: "previous hash does not match prior block"}
		}
		canonical, err := Canonicalize(block.Payload)
		if err != nil {
			return &model.ChainIntegrityError{Sequence: block.Sequence, Reason: fmt.Sprintf("payload not canonicalizable: %v", err)}
		}
		if want := Digest(block.PreviousHash, canonical); block.Hash != want {
			return &model.ChainIntegrityError{Sequence: block.Sequence, Reason: "stored hash does not match recomputation"}
		}
		previousHash = block.Hash
	}
	return nil
}
