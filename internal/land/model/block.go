package model

import "time"

// Block is one immutable hash-linked ledger entry. Sequence is assigned at
// append time, starting at 1; PreviousHash of the first block is the genesis
// sentinel. CreatedAt is advisory capture time and is not part of the hash.
type Block struct {
	Sequence     uint64
	PreviousHash string
	Hash         string
	Payload      Event
	CreatedAt    time.Time
}
