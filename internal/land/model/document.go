package model

import "time"

// DocumentStatus describes the verification state of an evidentiary document.
type DocumentStatus string

var (
	DocumentPending  DocumentStatus = "pending"
	DocumentVerified DocumentStatus = "verified"
)

// Document is an evidentiary artifact attached to a parcel. The raw bytes
// live in external storage; the registry keeps only the content hash and a
// size/path descriptor. ContentHash is unique per parcel.
type Document struct {
	ID           uint64
	ParcelID     uint64
	ContentHash  string
	SizeBytes    uint64
	StoragePath  string
	Status       DocumentStatus
	UploadedByID uint64
	VerifiedByID *uint64
	CreatedAt    time.Time
}
