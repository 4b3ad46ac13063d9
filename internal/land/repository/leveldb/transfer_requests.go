package leveldb

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hydrib/landregistry-backend/internal/land/model"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"
)

func requestKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%016d", requestKeyPrefix, id))
}

// TransferRequest reads one transfer request by id.
func (r *Repository) TransferRequest(id uint64) (model.TransferRequest, error) {
	started := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("transfer_request", err, started)
	}()

	value, err := r.db.Get(requestKey(id), nil)
	if errors.Is(err, ldberrors.ErrNotFound) {
		err = fmt.Errorf("transfer request %d: %w", id, model.ErrNotFound)
		return model.TransferRequest{}, err
	}
	if err != nil {
		return model.TransferRequest{}, fmt.Errorf("read transfer request %d: %w", id, err)
	}

	var request model.TransferRequest
	if err = json.Unmarshal(value, &request); err != nil {
		return model.TransferRequest{}, fmt.Errorf("decode transfer request %d: %w", id, err)
	}
	return request, nil
}

// TransferRequests returns all transfer requests ordered by id.
func (r *Repository) TransferRequests() ([]model.TransferRequest, error) {
	started := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("transfer_requests", err, started)
	}()

	iter := r.db.NewIterator(util.BytesPrefix([]byte(requestKeyPrefix)), nil)
	defer iter.Release()

	var requests []model.TransferRequest
	for iter.Next() {
		var request model.TransferRequest
		if err = json.Unmarshal(iter.Value(), &request); err != nil {
			return nil, fmt.Errorf("decode transfer request: %w", err)
		}
		requests = append(requests, request)
	}
	if err = iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate transfer requests: %w", err)
	}
	return requests, nil
}

// PutTransferRequest stages a transfer request write.
func (r *Repository) PutTransferRequest(batch *leveldb.Batch, request model.TransferRequest) error {
	value, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal transfer request %d: %w", request.ID, err)
	}

	batch.Put(requestKey(request.ID), value)
	return nil
}
