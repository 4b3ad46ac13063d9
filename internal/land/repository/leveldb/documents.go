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

func documentKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%016d", documentKeyPrefix, id))
}

func documentHashKey(parcelID uint64, contentHash string) []byte {
	return []byte(fmt.Sprintf("%s%016d/%s", docHashPrefix, parcelID, contentHash))
}

func documentParcelKey(parcelID, id uint64) []byte {
	return []byte(fmt.Sprintf("%s%016d/%016d", docParcelPrefix, parcelID, id))
}

// Document reads one document by id.
func (r *Repository) Document(id uint64) (model.Document, error) {
	started := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("document", err, started)
	}()

	value, err := r.db.Get(documentKey(id), nil)
	if errors.Is(err, ldberrors.ErrNotFound) {
		err = fmt.Errorf("document %d: %w", id, model.ErrNotFound)
		return model.Document{}, err
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("read document %d: %w", id, err)
	}

	var document model.Document
	if err = json.Unmarshal(value, &document); err != nil {
		return model.Document{}, fmt.Errorf("decode document %d: %w", id, err)
	}
	return document, nil
}

// DocumentIDByHash resolves the per-parcel content-hash index. A hit means
// the same artifact is already attached to the parcel.
func (r *Repository) DocumentIDByHash(parcelID uint64, contentHash string) (uint64, bool, error) {
	started := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("document_by_hash", err, started)
	}()

	value, err := r.db.Get(documentHashKey(parcelID, contentHash), nil)
	if errors.Is(err, ldberrors.ErrNotFound) {
		err = nil
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read document hash index: %w", err)
	}

	var id uint64
	if err = json.Unmarshal(value, &id); err != nil {
		return 0, false, fmt.Errorf("decode document hash index: %w", err)
	}
	return id, true, nil
}

// DocumentsByParcel returns the documents attached to a parcel, ordered by id.
// The per-parcel index keeps the listing a single prefix iteration.
func (r *Repository) DocumentsByParcel(parcelID uint64) ([]model.Document, error) {
	started := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("documents_by_parcel", err, started)
	}()

	prefix := []byte(fmt.Sprintf("%s%016d/", docParcelPrefix, parcelID))
	iter := r.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var documents []model.Document
	for iter.Next() {
		var id uint64
		if err = json.Unmarshal(iter.Value(), &id); err != nil {
			return nil, fmt.Errorf("decode document parcel index: %w", err)
		}

		value, getErr := r.db.Get(documentKey(id), nil)
		if getErr != nil {
			err = fmt.Errorf("read document %d: %w", id, getErr)
			return nil, err
		}

		var document model.Document
		if err = json.Unmarshal(value, &document); err != nil {
			return nil, fmt.Errorf("decode document %d: %w", id, err)
		}
		documents = append(documents, document)
	}
	if err = iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate document parcel index: %w", err)
	}
	return documents, nil
}

// PutDocument stages a document write plus its content-hash and per-parcel
// index entries.
func (r *Repository) PutDocument(batch *leveldb.Batch, document model.Document) error {
	value, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("marshal document %d: %w", document.ID, err)
	}

	id, err := json.Marshal(document.ID)
	if err != nil {
		return fmt.Errorf("marshal document id %d: %w", document.ID, err)
	}

	batch.Put(documentKey(document.ID), value)
	batch.Put(documentHashKey(document.ParcelID, document.ContentHash), id)
	batch.Put(documentParcelKey(document.ParcelID, document.ID), id)
	return nil
}
