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

func parcelKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%016d", parcelKeyPrefix, id))
}

func plotIndexKey(plotNumber string) []byte {
	return []byte(plotIndexPrefix + plotNumber)
}

// Parcel reads one parcel by id.
func (r *Repository) Parcel(id uint64) (model.Parcel, error) {
	started := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("parcel", err, started)
	}()

	value, err := r.db.Get(parcelKey(id), nil)
	if errors.Is(err, ldberrors.ErrNotFound) {
		err = fmt.Errorf("parcel %d: %w", id, model.ErrNotFound)
		return model.Parcel{}, err
	}
	if err != nil {
		return model.Parcel{}, fmt.Errorf("read parcel %d: %w", id, err)
	}

	var parcel model.Parcel
	if err = json.Unmarshal(value, &parcel); err != nil {
		return model.Parcel{}, fmt.Errorf("decode parcel %d: %w", id, err)
	}
	return parcel, nil
}

// ParcelIDByPlotNumber resolves the unique plot-number index.
func (r *Repository) ParcelIDByPlotNumber(plotNumber string) (uint64, bool, error) {
	started := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("parcel_by_plot", err, started)
	}()

	value, err := r.db.Get(plotIndexKey(plotNumber), nil)
	if errors.Is(err, ldberrors.ErrNotFound) {
		err = nil
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read plot index %q: %w", plotNumber, err)
	}

	var id uint64
	if err = json.Unmarshal(value, &id); err != nil {
		return 0, false, fmt.Errorf("decode plot index %q: %w", plotNumber, err)
	}
	return id, true, nil
}

// Parcels returns all parcels ordered by id.
func (r *Repository) Parcels() ([]model.Parcel, error) {
	started := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("parcels", err, started)
	}()

	iter := r.db.NewIterator(util.BytesPrefix([]byte(parcelKeyPrefix)), nil)
	defer iter.Release()

	var parcels []model.Parcel
	for iter.Next() {
		var parcel model.Parcel
		if err = json.Unmarshal(iter.Value(), &parcel); err != nil {
			return nil, fmt.Errorf("decode parcel: %w", err)
		}
		parcels = append(parcels, parcel)
	}
	if err = iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate parcels: %w", err)
	}
	return parcels, nil
}

// PutParcel stages a parcel write and its plot-number index entry.
func (r *Repository) PutParcel(batch *leveldb.Batch, parcel model.Parcel) error {
	value, err := json.Marshal(parcel)
	if err != nil {
		return fmt.Errorf("marshal parcel %d: %w", parcel.ID, err)
	}

	id, err := json.Marshal(parcel.ID)
	if err != nil {
		return fmt.Errorf("marshal parcel id %d: %w", parcel.ID, err)
	}

	batch.Put(parcelKey(parcel.ID), value)
	batch.Put(plotIndexKey(parcel.PlotNumber), id)
	return nil
}
