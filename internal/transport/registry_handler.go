// Package transport exposes the registry over JSON HTTP. Caller identity and
// role arrive pre-resolved in headers; authentication, sessions and file
// upload plumbing belong to the layer in front of this service.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/hydrib/landregistry-backend/internal/land/audit"
	"github.com/hydrib/landregistry-backend/internal/land/model"
	"github.com/hydrib/landregistry-backend/internal/land/service"
	"github.com/hydrib/landregistry-backend/pkg/safe"
	"go.uber.org/zap"
)

const (
	partyIDHeader   = "X-Party-Id"
	partyRoleHeader = "X-Party-Role"
)

type (
	// Registry is the ownership-transfer state machine.
	Registry interface {
		RegisterParcel(ctx context.Context, actor model.Actor, input service.RegisterParcelInput) (model.Parcel, error)
		InitiateSale(ctx context.Context, actor model.Actor, parcelID, buyerID uint64, price float64) (model.TransferRequest, error)
		ApproveSale(ctx context.Context, actor model.Actor, requestID uint64) (model.TransferRequest, error)
		RejectSale(ctx context.Context, actor model.Actor, requestID uint64) (model.TransferRequest, error)
		AttachDocument(ctx context.Context, actor model.Actor, input service.AttachDocumentInput) (model.Document, error)
		VerifyDocument(ctx context.Context, actor model.Actor, documentID uint64) (model.Document, error)
	}

	// Directory is the read side of the registry state.
	Directory interface {
		Parcels() ([]model.Parcel, error)
		TransferRequests() ([]model.TransferRequest, error)
		DocumentsByParcel(parcelID uint64) ([]model.Document, error)
	}

	// Auditor is the ledger view.
	Auditor interface {
		Events(ctx context.Context) ([]audit.Entry, error)
		Summarize(ctx context.Context) (audit.Summary, error)
		Verify(ctx context.Context) error
	}
)

// RegistryHandler serves the registry API.
type RegistryHandler struct {
	registry  Registry
	directory Directory
	auditor   Auditor
	logger    *zap.Logger
}

// NewRegistryHandler returns a RegistryHandler instance.
func NewRegistryHandler(registry Registry, directory Directory, auditor Auditor, logger *zap.Logger) *RegistryHandler {
	return &RegistryHandler{
		registry:  registry,
		directory: directory,
		auditor:   auditor,
		logger:    logger.Named("transport"),
	}
}

// Routes wires the handler into a mux.
func (h *RegistryHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/parcels", h.listParcels)
	mux.HandleFunc("POST /v1/parcels", h.registerParcel)
	mux.HandleFunc("POST /v1/parcels/{id}/sale", h.initiateSale)
	mux.HandleFunc("GET /v1/parcels/{id}/documents", h.listDocuments)
	mux.HandleFunc("POST /v1/parcels/{id}/documents", h.attachDocument)
	mux.HandleFunc("GET /v1/transfers", h.listTransfers)
	mux.HandleFunc("POST /v1/transfers/{id}/approve", h.approveSale)
	mux.HandleFunc("POST /v1/transfers/{id}/reject", h.rejectSale)
	mux.HandleFunc("POST /v1/documents/{id}/verify", h.verifyDocument)
	mux.HandleFunc("GET /v1/ledger", h.ledgerEvents)
	mux.HandleFunc("GET /v1/ledger/summary", h.ledgerSummary)
	mux.HandleFunc("GET /v1/ledger/verify", h.ledgerVerify)
	return mux
}

type registerParcelRequest struct {
	PlotNumber  string  `json:"plot_number"`
	Area        float64 `json:"area"`
	MarketValue float64 `json:"market_value"`
	Address     string  `json:"address"`
	Division    string  `json:"division"`
	District    string  `json:"district"`
	Upazila     string  `json:"upazila"`
	LandType    string  `json:"land_type"`
}

func (h *RegistryHandler) registerParcel(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req registerParcelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.PlotNumber == "" {
		h.writeError(w, http.StatusBadRequest, errors.New("plot_number is required"))
		return
	}

	parcel, err := h.registry.RegisterParcel(r.Context(), actor, service.RegisterParcelInput{
		PlotNumber:  req.PlotNumber,
		Area:        req.Area,
		MarketValue: req.MarketValue,
		Address:     req.Address,
		Division:    req.Division,
		District:    req.District,
		Upazila:     req.Upazila,
		LandType:    req.LandType,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, parcel)
}

type initiateSaleRequest struct {
	BuyerID int64   `json:"buyer_id"`
	Price   float64 `json:"price"`
}

func (h *RegistryHandler) initiateSale(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	parcelID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req initiateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	buyerID, err := safe.Uint64(req.BuyerID)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	request, err := h.registry.InitiateSale(r.Context(), actor, parcelID, buyerID, req.Price)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, request)
}

func (h *RegistryHandler) approveSale(w http.ResponseWriter, r *http.Request) {
	h.resolveSale(w, r, h.registry.ApproveSale)
}

func (h *RegistryHandler) rejectSale(w http.ResponseWriter, r *http.Request) {
	h.resolveSale(w, r, h.registry.RejectSale)
}

func (h *RegistryHandler) resolveSale(
	w http.ResponseWriter,
	r *http.Request,
	resolve func(context.Context, model.Actor, uint64) (model.TransferRequest, error),
) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	requestID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	request, err := resolve(r.Context(), actor, requestID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, request)
}

type attachDocumentRequest struct {
	ContentHash string `json:"content_hash"`
	SizeBytes   int64  `json:"size_bytes"`
	StoragePath string `json:"storage_path"`
}

func (h *RegistryHandler) attachDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	parcelID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req attachDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.ContentHash == "" {
		h.writeError(w, http.StatusBadRequest, errors.New("content_hash is required"))
		return
	}
	sizeBytes, err := safe.Uint64(req.SizeBytes)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	document, err := h.registry.AttachDocument(r.Context(), actor, service.AttachDocumentInput{
		ParcelID:    parcelID,
		ContentHash: req.ContentHash,
		SizeBytes:   sizeBytes,
		StoragePath: req.StoragePath,
	})
	if errors.Is(err, model.ErrDuplicateDocument) {
		// Idempotent: surface the already-attached document.
		h.writeJSON(w, http.StatusOK, document)
		return
	}
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, document)
}

func (h *RegistryHandler) verifyDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	documentID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	document, err := h.registry.VerifyDocument(r.Context(), actor, documentID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, document)
}

func (h *RegistryHandler) listParcels(w http.ResponseWriter, r *http.Request) {
	parcels, err := h.directory.Parcels()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, parcels)
}

func (h *RegistryHandler) listTransfers(w http.ResponseWriter, r *http.Request) {
	requests, err := h.directory.TransferRequests()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, requests)
}

func (h *RegistryHandler) listDocuments(w http.ResponseWriter, r *http.Request) {
	parcelID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	documents, err := h.directory.DocumentsByParcel(parcelID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, documents)
}

func (h *RegistryHandler) ledgerEvents(w http.ResponseWriter, r *http.Request) {
	entries, err := h.auditor.Events(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

func (h *RegistryHandler) ledgerSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.auditor.Summarize(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *RegistryHandler) ledgerVerify(w http.ResponseWriter, r *http.Request) {
	if err := h.auditor.Verify(r.Context()); err != nil {
		var integrityErr *model.ChainIntegrityError
		if errors.As(err, &integrityErr) {
			h.writeJSON(w, http.StatusOK, map[string]any{
				"valid":           false,
				"broken_sequence": integrityErr.Sequence,
				"reason":          integrityErr.Reason,
			})
			return
		}
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

func (h *RegistryHandler) actor(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	id, err := strconv.ParseUint(r.Header.Get(partyIDHeader), 10, 64)
	if err != nil || id == 0 {
		h.writeError(w, http.StatusUnauthorized, errors.New("missing or malformed "+partyIDHeader+" header"))
		return model.Actor{}, false
	}

	role := model.Role(r.Header.Get(partyRoleHeader))
	switch role {
	case model.RoleOwner, model.RoleBuyer, model.RoleRegistrar:
	default:
		h.writeError(w, http.StatusUnauthorized, errors.New("missing or malformed "+partyRoleHeader+" header"))
		return model.Actor{}, false
	}
	return model.Actor{ID: id, Role: role}, true
}

func (h *RegistryHandler) pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("malformed id path segment"))
		return 0, false
	}
	return id, true
}

func (h *RegistryHandler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, model.ErrInvalidStateTransition):
		h.writeError(w, http.StatusConflict, err)
	case errors.Is(err, model.ErrUnauthorized):
		h.writeError(w, http.StatusForbidden, err)
	case errors.Is(err, model.ErrEncoding):
		h.writeError(w, http.StatusUnprocessableEntity, err)
	default:
		h.logger.Error("internal error", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func (h *RegistryHandler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *RegistryHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}
