package model

import "time"

// TransferKind distinguishes initial registrations from sales.
type TransferKind string

var (
	TransferRegistration TransferKind = "registration"
	TransferSale         TransferKind = "sale"
)

// TransferStatus describes the lifecycle state of a transfer request.
type TransferStatus string

var (
	TransferPending   TransferStatus = "pending"
	TransferApproved  TransferStatus = "approved"
	TransferRejected  TransferStatus = "rejected"
	TransferCompleted TransferStatus = "completed"
)

// Terminal reports whether the status admits no further transition.
func (s TransferStatus) Terminal() bool {
	return s == TransferApproved || s == TransferRejected || s == TransferCompleted
}

// TransferRequest is one proposed change of parcel custody. Once resolved it
// is never mutated again.
//
// ConsensusVotes and RequiredVotes are inert metadata carried over from the
// original schema; approval is a single-authority gate and no quorum is ever
// collected.
type TransferRequest struct {
	ID             uint64
	ParcelID       uint64
	FromOwnerID    *uint64
	ToPartyID      uint64
	Kind           TransferKind
	Price          *float64
	Status         TransferStatus
	ConsensusVotes uint32
	RequiredVotes  uint32
	CreatedAt      time.Time
	ResolvedAt     *time.Time
}
