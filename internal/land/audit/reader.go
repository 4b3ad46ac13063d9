// Package audit projects the ledger into read-only views. It works from
// block payloads alone: the ledger is a journal of events, so referenced
// parcels, requests and documents may have since diverged or disappeared,
// and the projection must not care.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/hydrib/landregistry-backend/internal/land/model"
)

type (
	// Chain is the read side of the ledger.
	Chain interface {
		Replay(ctx context.Context) ([]model.Block, error)
		VerifyIntegrity(ctx context.Context) error
	}
)

// Entry is one human-readable line of the ledger view.
type Entry struct {
	Sequence    uint64          `json:"sequence"`
	Kind        model.EventKind `json:"kind"`
	Description string          `json:"description"`
	Hash        string          `json:"hash"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Summary aggregates the chain for display.
type Summary struct {
	Length   uint64                     `json:"length"`
	TailHash string                     `json:"tail_hash"`
	Counts   map[model.EventKind]uint64 `json:"counts"`
}

// Reader replays the chain; it never mutates anything.
type Reader struct {
	chain Chain
}

func NewReader(chain Chain) *Reader {
	return &Reader{chain: chain}
}

// Events returns the full event stream, oldest first.
func (r *Reader) Events(ctx context.Context) ([]Entry, error) {
	blocks, err := r.chain.Replay(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(blocks))
	for _, block := range blocks {
		description, err := describe(block.Payload)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", block.Sequence, err)
		}
		entries = append(entries, Entry{
			Sequence:    block.Sequence,
			Kind:        block.Payload.Kind(),
			Description: description,
			Hash:        block.Hash,
			CreatedAt:   block.CreatedAt,
		})
	}
	return entries, nil
}

// Summarize returns chain length, tail hash and per-kind counts.
func (r *Reader) Summarize(ctx context.Context) (Summary, error) {
	blocks, err := r.chain.Replay(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Length: uint64(len(blocks)),
		Counts: make(map[model.EventKind]uint64),
	}
	for _, block := range blocks {
		summary.Counts[block.Payload.Kind()]++
		summary.TailHash = block.Hash
	}
	return summary, nil
}

// Verify re-checks the whole chain.
func (r *Reader) Verify(ctx context.Context) error {
	return r.chain.VerifyIntegrity(ctx)
}

func describe(event model.Event) (string, error) {
	switch e := event.(type) {
	case model.RegistrationEvent:
		return fmt.Sprintf("plot %s registered to party %d as parcel %d", e.PlotNumber, e.OwnerID, e.ParcelID), nil
	case model.SaleInitiatedEvent:
		return fmt.Sprintf("sale of parcel %d opened by party %d toward party %d at %.2f", e.ParcelID, e.SellerID, e.BuyerID, e.Price), nil
	case model.OwnershipTransferEvent:
		return fmt.Sprintf("parcel %d transferred from party %d to party %d at %.2f", e.ParcelID, e.PreviousOwnerID, e.NewOwnerID, e.Price), nil
	case model.SaleRejectedEvent:
		return fmt.Sprintf("sale request %d for parcel %d rejected; custody stays with party %d", e.RequestID, e.ParcelID, e.OwnerID), nil
	case model.DocumentUploadEvent:
		return fmt.Sprintf("document %d (%s) attached to parcel %d", e.DocumentID, e.ContentHash, e.ParcelID), nil
	case model.DocumentVerifiedEvent:
		return fmt.Sprintf("document %d on parcel %d verified by party %d", e.DocumentID, e.ParcelID, e.VerifierID), nil
	default:
		return "", fmt.Errorf("unknown event kind %q", event.Kind())
	}
}
