package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across package boundaries.
var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrDuplicateDocument      = errors.New("duplicate document")
	ErrChainIntegrity         = errors.New("chain integrity violation")
	ErrEncoding               = errors.New("payload not canonicalizable")
	ErrNotFound               = errors.New("not found")
	ErrUnauthorized           = errors.New("actor not authorized")
)

// InvalidStateTransitionError reports a precondition failure on a parcel,
// transfer request or document. Nothing was written to storage.
type InvalidStateTransitionError struct {
	Action string
	Entity string
	ID     uint64
	Status string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s: %s %d in status %q", e.Action, e.Entity, e.ID, e.Status)
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// DuplicateDocumentError signals that the same content hash is already
// attached to the parcel. It is an idempotence signal, not a failure: the
// existing document id is carried so callers can treat the upload as done.
type DuplicateDocumentError struct {
	ParcelID    uint64
	ContentHash string
	ExistingID  uint64
}

func (e *DuplicateDocumentError) Error() string {
	return fmt.Sprintf("document with hash %s already attached to parcel %d", e.ContentHash, e.ParcelID)
}

func (e *DuplicateDocumentError) Unwrap() error { return ErrDuplicateDocument }

// ChainIntegrityError reports the first block at which the stored chain does
// not match recomputation. It must never be silently repaired; appends should
// halt pending investigation.
type ChainIntegrityError struct {
	Sequence uint64
	Reason   string
}

func (e *ChainIntegrityError) Error() string {
	return fmt.Sprintf("chain broken at sequence %d: %s", e.Sequence, e.Reason)
}

func (e *ChainIntegrityError) Unwrap() error { return ErrChainIntegrity }

// EncodingError reports a payload that could not be canonicalized. It aborts
// the operation before any storage write.
type EncodingError struct {
	Kind EventKind
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("canonicalize %s payload: %v", e.Kind, e.Err)
}

func (e *EncodingError) Unwrap() error { return ErrEncoding }
