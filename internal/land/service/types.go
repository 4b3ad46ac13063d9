// Package service drives the ownership-transfer state machine and the
// document verification workflow. Every transition pairs its registry
// mutation with exactly one ledger append, committed atomically.
package service

import (
	"context"
	"time"

	"github.com/hydrib/landregistry-backend/internal/land/model"
	"github.com/syndtr/goleveldb/leveldb"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Ledger appends one block atomically with the companion batch staged by
	// the callback.
	Ledger interface {
		Append(ctx context.Context, event model.Event, companion func(batch *leveldb.Batch) error) (model.Block, error)
	}

	// Repository is the mutable registry state. Put* methods stage writes
	// into the ledger append batch.
	Repository interface {
		Parcel(id uint64) (model.Parcel, error)
		ParcelIDByPlotNumber(plotNumber string) (uint64, bool, error)
		PutParcel(batch *leveldb.Batch, parcel model.Parcel) error
		AllocateParcelID() (uint64, error)

		TransferRequest(id uint64) (model.TransferRequest, error)
		PutTransferRequest(batch *leveldb.Batch, request model.TransferRequest) error
		AllocateTransferRequestID() (uint64, error)

		Document(id uint64) (model.Document, error)
		DocumentIDByHash(parcelID uint64, contentHash string) (uint64, bool, error)
		PutDocument(batch *leveldb.Batch, document model.Document) error
		AllocateDocumentID() (uint64, error)
	}

	Metrics interface {
		ObserveTransition(action string, err error, started time.Time)
	}
)

// RegisterParcelInput carries the pre-validated registration fields. Free
// text is sanitized by the caller; the core only enforces plot uniqueness.
type RegisterParcelInput struct {
	PlotNumber  string
	Area        float64
	MarketValue float64
	Address     string
	Division    string
	District    string
	Upazila     string
	LandType    string
}
