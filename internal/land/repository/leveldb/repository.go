// Package leveldb persists the authoritative registry state and the ledger
// blocks in an embedded LevelDB store. All mutations are staged into a
// leveldb.Batch and applied through Commit, so a ledger append and its
// companion registry writes land atomically or not at all.
package leveldb

import (
	"errors"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

type (
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// Key prefixes. Blocks sort by zero-padded sequence so iteration order is
// append order.
const (
	blockKeyPrefix    = "b/"
	parcelKeyPrefix   = "p/"
	plotIndexPrefix   = "pn/"
	requestKeyPrefix  = "r/"
	documentKeyPrefix = "d/"
	docHashPrefix     = "dh/"
	docParcelPrefix   = "dp/"
	counterKeyPrefix  = "c/"
)

type Repository struct {
	db      *leveldb.DB
	metrics Metrics
}

// NewRepository opens (or creates) the store at the given path.
func NewRepository(path string, metrics Metrics) (*Repository, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}
	if metrics == nil {
		return nil, errors.New("metrics is required")
	}

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db, metrics: metrics}, nil
}

// NewMemoryRepository opens a store backed by in-memory storage. Used by
// tests and throwaway environments.
func NewMemoryRepository(metrics Metrics) (*Repository, error) {
	if metrics == nil {
		return nil, errors.New("metrics is required")
	}

	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db, metrics: metrics}, nil
}

// Commit applies a staged batch atomically.
func (r *Repository) Commit(batch *leveldb.Batch) error {
	started := time.Now()
	err := r.db.Write(batch, nil)
	r.metrics.Observe("commit", err, started)
	return err
}

func (r *Repository) Close() error {
	return r.db.Close()
}
