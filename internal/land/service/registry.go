package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hydrib/landregistry-backend/internal/land/model"
	"github.com/syndtr/goleveldb/leveldb"
	"go.uber.org/zap"
)

// Registry is the single writer authority over parcels, transfer requests
// and documents. One mutex serializes all transitions, so two concurrent
// approvals of the same request resolve to exactly one success, and every
// append observes the tail it was computed against.
type Registry struct {
	mu      sync.Mutex
	ledger  Ledger
	repo    Repository
	metrics Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewRegistry builds the state machine over its collaborators.
func NewRegistry(ledger Ledger, repo Repository, metrics Metrics, logger *zap.Logger) (*Registry, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if metrics == nil {
		return nil, fmt.Errorf("metrics is required")
	}

	return &Registry{
		ledger:  ledger,
		repo:    repo,
		metrics: metrics,
		logger:  logger.Named("registry"),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// RegisterParcel creates a parcel under its first owner together with a
// completed registration transfer request, atomically with a registration
// block.
func (r *Registry) RegisterParcel(ctx context.Context, actor model.Actor, input RegisterParcelInput) (parcel model.Parcel, err error) {
	started := time.Now()
	defer func() {
		r.metrics.ObserveTransition("register_parcel", err, started)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists, lookupErr := r.repo.ParcelIDByPlotNumber(input.PlotNumber); lookupErr != nil {
		err = lookupErr
		return model.Parcel{}, err
	} else if exists {
		err = fmt.Errorf("plot number %q is already registered: %w", input.PlotNumber, model.ErrInvalidStateTransition)
		return model.Parcel{}, err
	}

	parcelID, err := r.repo.AllocateParcelID()
	if err != nil {
		return model.Parcel{}, err
	}
	requestID, err := r.repo.AllocateTransferRequestID()
	if err != nil {
		return model.Parcel{}, err
	}

	now := r.now()
	parcel = model.Parcel{
		ID:          parcelID,
		PlotNumber:  input.PlotNumber,
		OwnerID:     actor.ID,
		Status:      model.ParcelRegistered,
		Area:        input.Area,
		MarketValue: input.MarketValue,
		Address:     input.Address,
		Division:    input.Division,
		District:    input.District,
		Upazila:     input.Upazila,
		LandType:    input.LandType,
		CreatedAt:   now,
	}
	request := model.TransferRequest{
		ID:             requestID,
		ParcelID:       parcelID,
		ToPartyID:      actor.ID,
		Kind:           model.TransferRegistration,
		Status:         model.TransferCompleted,
		ConsensusVotes: 1,
		RequiredVotes:  1,
		CreatedAt:      now,
		ResolvedAt:     &now,
	}

	event := model.RegistrationEvent{
		ParcelID:   parcelID,
		PlotNumber: input.PlotNumber,
		OwnerID:    actor.ID,
	}
	block, err := r.ledger.Append(ctx, event, func(batch *leveldb.Batch) error {
		if putErr := r.repo.PutParcel(batch, parcel); putErr != nil {
			return putErr
		}
		return r.repo.PutTransferRequest(batch, request)
	})
	if err != nil {
		return model.Parcel{}, err
	}

	r.logger.Info("parcel registered",
		zap.Uint64("parcel_id", parcelID),
		zap.String("plot_number", input.PlotNumber),
		zap.Uint64("owner_id", actor.ID),
		zap.Uint64("sequence", block.Sequence),
	)
	return parcel, nil
}

// InitiateSale locks an unencumbered parcel into a pending sale toward the
// given buyer, atomically with a sale_initiated block. The caller must be the
// current owner.
func (r *Registry) InitiateSale(ctx context.Context, actor model.Actor, parcelID, buyerID uint64, price float64) (request model.TransferRequest, err error) {
	started := time.Now()
	defer func() {
		r.metrics.ObserveTransition("initiate_sale", err, started)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	parcel, err := r.repo.Parcel(parcelID)
	if err != nil {
		return model.TransferRequest{}, err
	}
	if parcel.OwnerID != actor.ID {
		err = fmt.Errorf("parcel %d: %w", parcelID, model.ErrUnauthorized)
		return model.TransferRequest{}, err
	}
	if buyerID == parcel.OwnerID {
		err = &model.InvalidStateTransitionError{Action: "initiate_sale", Entity: "parcel", ID: parcelID, Status: "buyer is current owner"}
		return model.TransferRequest{}, err
	}
	if !parcel.Sellable() {
		err = &model.InvalidStateTransitionError{Action: "initiate_sale", Entity: "parcel", ID: parcelID, Status: string(parcel.Status)}
		return model.TransferRequest{}, err
	}

	requestID, err := r.repo.AllocateTransferRequestID()
	if err != nil {
		return model.TransferRequest{}, err
	}

	now := r.now()
	fromOwner := parcel.OwnerID
	request = model.TransferRequest{
		ID:            requestID,
		ParcelID:      parcelID,
		FromOwnerID:   &fromOwner,
		ToPartyID:     buyerID,
		Kind:          model.TransferSale,
		Price:         &price,
		Status:        model.TransferPending,
		RequiredVotes: 1,
		CreatedAt:     now,
	}
	parcel.Status = model.ParcelPendingTransfer

	event := model.SaleInitiatedEvent{
		RequestID: requestID,
		ParcelID:  parcelID,
		SellerID:  fromOwner,
		BuyerID:   buyerID,
		Price:     price,
	}
	block, err := r.ledger.Append(ctx, event, func(batch *leveldb.Batch) error {
		if putErr := r.repo.PutParcel(batch, parcel); putErr != nil {
			return putErr
		}
		return r.repo.PutTransferRequest(batch, request)
	})
	if err != nil {
		return model.TransferRequest{}, err
	}

	r.logger.Info("sale initiated",
		zap.Uint64("request_id", requestID),
		zap.Uint64("parcel_id", parcelID),
		zap.Uint64("buyer_id", buyerID),
		zap.Float64("price", price),
		zap.Uint64("sequence", block.Sequence),
	)
	return request, nil
}

// ApproveSale resolves a pending sale: custody moves to the counterparty and
// the parcel returns to active, atomically with an ownership_transfer block.
// Approving anything but a pending request is InvalidStateTransition with
// zero storage writes.
func (r *Registry) ApproveSale(ctx context.Context, actor model.Actor, requestID uint64) (request model.TransferRequest, err error) {
	started := time.Now()
	defer func() {
		r.metrics.ObserveTransition("approve_sale", err, started)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	if actor.Role != model.RoleRegistrar {
		err = fmt.Errorf("approve sale: %w", model.ErrUnauthorized)
		return model.TransferRequest{}, err
	}

	request, err = r.repo.TransferRequest(requestID)
	if err != nil {
		return model.TransferRequest{}, err
	}
	if request.Status.Terminal() {
		err = &model.InvalidStateTransitionError{Action: "approve_sale", Entity: "transfer_request", ID: requestID, Status: string(request.Status)}
		return model.TransferRequest{}, err
	}

	parcel, err := r.repo.Parcel(request.ParcelID)
	if err != nil {
		return model.TransferRequest{}, err
	}

	now := r.now()
	previousOwner := parcel.OwnerID
	parcel.OwnerID = request.ToPartyID
	parcel.Status = model.ParcelActive
	request.Status = model.TransferApproved
	request.ConsensusVotes = 1
	request.ResolvedAt = &now

	var price float64
	if request.Price != nil {
		price = *request.Price
	}
	event := model.OwnershipTransferEvent{
		RequestID:       requestID,
		ParcelID:        parcel.ID,
		PreviousOwnerID: previousOwner,
		NewOwnerID:      request.ToPartyID,
		Price:           price,
	}
	block, err := r.ledger.Append(ctx, event, func(batch *leveldb.Batch) error {
		if putErr := r.repo.PutParcel(batch, parcel); putErr != nil {
			return putErr
		}
		return r.repo.PutTransferRequest(batch, request)
	})
	if err != nil {
		return model.TransferRequest{}, err
	}

	r.logger.Info("sale approved",
		zap.Uint64("request_id", requestID),
		zap.Uint64("parcel_id", parcel.ID),
		zap.Uint64("previous_owner_id", previousOwner),
		zap.Uint64("new_owner_id", parcel.OwnerID),
		zap.Uint64("sequence", block.Sequence),
	)
	return request, nil
}

// RejectSale resolves a pending sale without a custody change: the parcel
// returns to active under its current owner. The rejection itself is still
// appended as an audit block.
func (r *Registry) RejectSale(ctx context.Context, actor model.Actor, requestID uint64) (request model.TransferRequest, err error) {
	started := time.Now()
	defer func() {
		r.metrics.ObserveTransition("reject_sale", err, started)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	if actor.Role != model.RoleRegistrar {
		err = fmt.Errorf("reject sale: %w", model.ErrUnauthorized)
		return model.TransferRequest{}, err
	}

	request, err = r.repo.TransferRequest(requestID)
	if err != nil {
		return model.TransferRequest{}, err
	}
	if request.Status.Terminal() {
		err = &model.InvalidStateTransitionError{Action: "reject_sale", Entity: "transfer_request", ID: requestID, Status: string(request.Status)}
		return model.TransferRequest{}, err
	}

	parcel, err := r.repo.Parcel(request.ParcelID)
	if err != nil {
		return model.TransferRequest{}, err
	}

	now := r.now()
	parcel.Status = model.ParcelActive
	request.Status = model.TransferRejected
	request.ResolvedAt = &now

	event := model.SaleRejectedEvent{
		RequestID: requestID,
		ParcelID:  parcel.ID,
		OwnerID:   parcel.OwnerID,
	}
	block, err := r.ledger.Append(ctx, event, func(batch *leveldb.Batch) error {
		if putErr := r.repo.PutParcel(batch, parcel); putErr != nil {
			return putErr
		}
		return r.repo.PutTransferRequest(batch, request)
	})
	if err != nil {
		return model.TransferRequest{}, err
	}

	r.logger.Info("sale rejected",
		zap.Uint64("request_id", requestID),
		zap.Uint64("parcel_id", parcel.ID),
		zap.Uint64("sequence", block.Sequence),
	)
	return request, nil
}
