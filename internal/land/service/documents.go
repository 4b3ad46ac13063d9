package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hydrib/landregistry-backend/internal/land/model"
	"github.com/syndtr/goleveldb/leveldb"
	"go.uber.org/zap"
)

// AttachDocumentInput carries a stored artifact's descriptor. The raw bytes
// never enter the core; the outer layer persists them and hands over the
// computed content hash.
type AttachDocumentInput struct {
	ParcelID    uint64
	ContentHash string
	SizeBytes   uint64
	StoragePath string
}

// AttachDocument records an evidentiary document against a parcel,
// atomically with a document_upload block. Re-attaching the same content
// hash to the same parcel returns the existing document together with a
// DuplicateDocumentError, so callers can treat the upload as already done.
func (r *Registry) AttachDocument(ctx context.Context, actor model.Actor, input AttachDocumentInput) (document model.Document, err error) {
	started := time.Now()
	defer func() {
		r.metrics.ObserveTransition("attach_document", err, started)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	parcel, err := r.repo.Parcel(input.ParcelID)
	if err != nil {
		return model.Document{}, err
	}
	if parcel.OwnerID != actor.ID && actor.Role != model.RoleRegistrar {
		err = fmt.Errorf("parcel %d: %w", input.ParcelID, model.ErrUnauthorized)
		return model.Document{}, err
	}

	if existingID, exists, lookupErr := r.repo.DocumentIDByHash(input.ParcelID, input.ContentHash); lookupErr != nil {
		err = lookupErr
		return model.Document{}, err
	} else if exists {
		existing, getErr := r.repo.Document(existingID)
		if getErr != nil {
			err = getErr
			return model.Document{}, err
		}
		err = &model.DuplicateDocumentError{ParcelID: input.ParcelID, ContentHash: input.ContentHash, ExistingID: existingID}
		return existing, err
	}

	documentID, err := r.repo.AllocateDocumentID()
	if err != nil {
		return model.Document{}, err
	}

	document = model.Document{
		ID:           documentID,
		ParcelID:     input.ParcelID,
		ContentHash:  input.ContentHash,
		SizeBytes:    input.SizeBytes,
		StoragePath:  input.StoragePath,
		Status:       model.DocumentPending,
		UploadedByID: actor.ID,
		CreatedAt:    r.now(),
	}

	event := model.DocumentUploadEvent{
		DocumentID:  documentID,
		ParcelID:    input.ParcelID,
		ContentHash: input.ContentHash,
	}
	block, err := r.ledger.Append(ctx, event, func(batch *leveldb.Batch) error {
		return r.repo.PutDocument(batch, document)
	})
	if err != nil {
		return model.Document{}, err
	}

	r.logger.Info("document attached",
		zap.Uint64("document_id", documentID),
		zap.Uint64("parcel_id", input.ParcelID),
		zap.String("content_hash", input.ContentHash),
		zap.Uint64("sequence", block.Sequence),
	)
	return document, nil
}

// VerifyDocument moves a document from pending to verified, one-way,
// atomically with a document_verified block. Only the registrar role may
// verify; ordinary parcel ownership is not enough.
func (r *Registry) VerifyDocument(ctx context.Context, actor model.Actor, documentID uint64) (document model.Document, err error) {
	started := time.Now()
	defer func() {
		r.metrics.ObserveTransition("verify_document", err, started)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	if actor.Role != model.RoleRegistrar {
		err = fmt.Errorf("verify document: %w", model.ErrUnauthorized)
		return model.Document{}, err
	}

	document, err = r.repo.Document(documentID)
	if err != nil {
		return model.Document{}, err
	}
	if document.Status != model.DocumentPending {
		err = &model.InvalidStateTransitionError{Action: "verify_document", Entity: "document", ID: documentID, Status: string(document.Status)}
		return model.Document{}, err
	}

	verifier := actor.ID
	document.Status = model.DocumentVerified
	document.VerifiedByID = &verifier

	event := model.DocumentVerifiedEvent{
		DocumentID: documentID,
		ParcelID:   document.ParcelID,
		VerifierID: verifier,
	}
	block, err := r.ledger.Append(ctx, event, func(batch *leveldb.Batch) error {
		return r.repo.PutDocument(batch, document)
	})
	if err != nil {
		return model.Document{}, err
	}

	r.logger.Info("document verified",
		zap.Uint64("document_id", documentID),
		zap.Uint64("parcel_id", document.ParcelID),
		zap.Uint64("verifier_id", verifier),
		zap.Uint64("sequence", block.Sequence),
	)
	return document, nil
}
