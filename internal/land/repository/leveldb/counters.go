package leveldb

import (
	"encoding/json"
	"errors"
	"fmt"

	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
)

// Id counters behave like database sequences: the increment is committed
// immediately, so an aborted transition may burn an id but can never reuse
// one. Callers must hold the registry serialization lock; the read-increment
// pair is not otherwise safe against concurrent allocators.

func counterKey(name string) []byte {
	return []byte(counterKeyPrefix + name)
}

func (r *Repository) allocateID(name string) (uint64, error) {
	var current uint64
	value, err := r.db.Get(counterKey(name), nil)
	switch {
	case errors.Is(err, ldberrors.ErrNotFound):
		current = 0
	case err != nil:
		return 0, fmt.Errorf("read %s counter: %w", name, err)
	default:
		if err := json.Unmarshal(value, &current); err != nil {
			return 0, fmt.Errorf("decode %s counter: %w", name, err)
		}
	}

	next := current + 1
	encoded, err := json.Marshal(next)
	if err != nil {
		return 0, fmt.Errorf("marshal %s counter: %w", name, err)
	}
	if err := r.db.Put(counterKey(name), encoded, nil); err != nil {
		return 0, fmt.Errorf("write %s counter: %w", name, err)
	}
	return next, nil
}

// AllocateParcelID returns the next parcel id.
func (r *Repository) AllocateParcelID() (uint64, error) {
	return r.allocateID("parcel")
}

// AllocateTransferRequestID returns the next transfer request id.
func (r *Repository) AllocateTransferRequestID() (uint64, error) {
	return r.allocateID("request")
}

// AllocateDocumentID returns the next document id.
func (r *Repository) AllocateDocumentID() (uint64, error) {
	return r.allocateID("document")
}
