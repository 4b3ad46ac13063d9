package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hydrib/landregistry-backend/internal/land/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	parcel, err := f.registry.RegisterParcel(ctx, owner, RegisterParcelInput{PlotNumber: "DHAKA-001"})
	require.NoError(t, err)

	document, err := f.registry.AttachDocument(ctx, owner, AttachDocumentInput{
		ParcelID:    parcel.ID,
		ContentHash: "abc123",
		SizeBytes:   2048,
		StoragePath: "docs/1/deed.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), document.ID)
	assert.Equal(t, model.DocumentPending, document.Status)
	assert.Equal(t, owner.ID, document.UploadedByID)
	assert.Equal(t, 2, f.chainLength(t))
}

func TestAttachDocumentDuplicateHash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	parcel, err := f.registry.RegisterParcel(ctx, owner, RegisterParcelInput{PlotNumber: "DHAKA-001"})
	require.NoError(t, err)

	input := AttachDocumentInput{ParcelID: parcel.ID, ContentHash: "abc123", SizeBytes: 2048}
	first, err := f.registry.AttachDocument(ctx, owner, input)
	require.NoError(t, err)

	// Re-attaching the same hash surfaces the existing document, appends
	// nothing, and signals the duplicate.
	second, err := f.registry.AttachDocument(ctx, owner, input)
	assert.ErrorIs(t, err, model.ErrDuplicateDocument)
	var dupErr *model.DuplicateDocumentError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, first.ID, dupErr.ExistingID)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, f.chainLength(t))

	// The same hash on another parcel is a fresh document.
	other, err := f.registry.RegisterParcel(ctx, buyer, RegisterParcelInput{PlotNumber: "DHAKA-002"})
	require.NoError(t, err)
	third, err := f.registry.AttachDocument(ctx, buyer, AttachDocumentInput{ParcelID: other.ID, ContentHash: "abc123"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestAttachDocumentAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	parcel, err := f.registry.RegisterParcel(ctx, owner, RegisterParcelInput{PlotNumber: "DHAKA-001"})
	require.NoError(t, err)

	_, err = f.registry.AttachDocument(ctx, buyer, AttachDocumentInput{ParcelID: parcel.ID, ContentHash: "abc123"})
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	// The registrar may attach on any parcel.
	_, err = f.registry.AttachDocument(ctx, registrar, AttachDocumentInput{ParcelID: parcel.ID, ContentHash: "def456"})
	require.NoError(t, err)
}

func TestVerifyDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	parcel, err := f.registry.RegisterParcel(ctx, owner, RegisterParcelInput{PlotNumber: "DHAKA-001"})
	require.NoError(t, err)
	document, err := f.registry.AttachDocument(ctx, owner, AttachDocumentInput{ParcelID: parcel.ID, ContentHash: "abc123"})
	require.NoError(t, err)

	_, err = f.registry.VerifyDocument(ctx, owner, document.ID)
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	verified, err := f.registry.VerifyDocument(ctx, registrar, document.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentVerified, verified.Status)
	require.NotNil(t, verified.VerifiedByID)
	assert.Equal(t, registrar.ID, *verified.VerifiedByID)
	assert.Equal(t, 3, f.chainLength(t))

	// Verification is one-way.
	_, err = f.registry.VerifyDocument(ctx, registrar, document.ID)
	assert.ErrorIs(t, err, model.ErrInvalidStateTransition)
	assert.Equal(t, 3, f.chainLength(t))
}
