// Package model defines domain models for the land registry core.
package model

import "time"

// ParcelStatus describes the custody state of a land parcel.
type ParcelStatus string

var (
	// ParcelRegistered marks a freshly registered parcel.
	ParcelRegistered ParcelStatus = "registered"
	// ParcelActive marks a parcel that has been through at least one resolved transfer.
	ParcelActive ParcelStatus = "active"
	// ParcelPendingTransfer marks a parcel locked by an unresolved sale.
	ParcelPendingTransfer ParcelStatus = "pending_transfer"
	// ParcelTransferred is accepted on read for historical rows; no transition writes it.
	ParcelTransferred ParcelStatus = "transferred"
)

// Parcel is the authoritative record of one land unit. OwnerID and Status are
// mutated only through registry transitions; the descriptive attributes are
// immutable after registration.
type Parcel struct {
	ID          uint64
	PlotNumber  string
	OwnerID     uint64
	Status      ParcelStatus
	Area        float64
	MarketValue float64
	Address     string
	Division    string
	District    string
	Upazila     string
	LandType    string
	CreatedAt   time.Time
}

// Sellable reports whether the parcel can enter a new sale.
func (p Parcel) Sellable() bool {
	return p.Status == ParcelRegistered || p.Status == ParcelActive
}
