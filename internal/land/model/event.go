package model

// EventKind tags a ledger block payload.
type EventKind string

var (
	EventRegistration      EventKind = "registration"
	EventSaleInitiated     EventKind = "sale_initiated"
	EventOwnershipTransfer EventKind = "ownership_transfer"
	EventSaleRejected      EventKind = "sale_rejected"
	EventDocumentUpload    EventKind = "document_upload"
	EventDocumentVerified  EventKind = "document_verified"
)

// Event is the tagged payload of a ledger block. Events reference parcels,
// transfer requests and documents by id value only; the ledger never holds a
// live reference into the mutable rows.
type Event interface {
	Kind() EventKind
}

// RegistrationEvent records the creation of a parcel under its first owner.
type RegistrationEvent struct {
	ParcelID   uint64 `json:"parcel_id"`
	PlotNumber string `json:"plot_number"`
	OwnerID    uint64 `json:"owner_id"`
}

func (RegistrationEvent) Kind() EventKind { return EventRegistration }

// SaleInitiatedEvent records a parcel entering a pending sale.
type SaleInitiatedEvent struct {
	RequestID uint64  `json:"request_id"`
	ParcelID  uint64  `json:"parcel_id"`
	SellerID  uint64  `json:"seller_id"`
	BuyerID   uint64  `json:"buyer_id"`
	Price     float64 `json:"price"`
}

func (SaleInitiatedEvent) Kind() EventKind { return EventSaleInitiated }

// OwnershipTransferEvent records an approved sale changing custody.
type OwnershipTransferEvent struct {
	RequestID       uint64  `json:"request_id"`
	ParcelID        uint64  `json:"parcel_id"`
	PreviousOwnerID uint64  `json:"previous_owner_id"`
	NewOwnerID      uint64  `json:"new_owner_id"`
	Price           float64 `json:"price"`
}

func (OwnershipTransferEvent) Kind() EventKind { return EventOwnershipTransfer }

// SaleRejectedEvent records a rejected sale. Ownership does not change, but
// the rejection itself is auditable.
type SaleRejectedEvent struct {
	RequestID uint64 `json:"request_id"`
	ParcelID  uint64 `json:"parcel_id"`
	OwnerID   uint64 `json:"owner_id"`
}

func (SaleRejectedEvent) Kind() EventKind { return EventSaleRejected }

// DocumentUploadEvent records a document attached to a parcel.
type DocumentUploadEvent struct {
	DocumentID  uint64 `json:"document_id"`
	ParcelID    uint64 `json:"parcel_id"`
	ContentHash string `json:"content_hash"`
}

func (DocumentUploadEvent) Kind() EventKind { return EventDocumentUpload }

// DocumentVerifiedEvent records a registrar verifying a document.
type DocumentVerifiedEvent struct {
	DocumentID uint64 `json:"document_id"`
	ParcelID   uint64 `json:"parcel_id"`
	VerifierID uint64 `json:"verifier_id"`
}

func (DocumentVerifiedEvent) Kind() EventKind { return EventDocumentVerified }
