package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LanderBuys/strivon-sub004/internal/moderr"
	"github.com/LanderBuys/strivon-sub004/internal/models"
)

const moverBaseURL = "https://cdn.test/bucket"

func quarantinedRecord(storage *memStorage) *models.MediaRecord {
	key := QuarantineKey("u1", "m1", "cat.jpg")
	storage.put(key, []byte("jpeg-bytes"))
	return &models.MediaRecord{
		ID:           "m1",
		OwnerUID:     "u1",
		Status:       models.StatusProcessing,
		OriginalPath: &key,
	}
}

func TestMoverPromote(t *testing.T) {
	storage := newMemStorage()
	rec := quarantinedRecord(storage)
	mover := NewMover(storage, moverBaseURL)

	publicPath, publicURL, err := mover.Promote(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "public/u1/m1.jpg", publicPath)
	assert.Equal(t, moverBaseURL+"/public/u1/m1.jpg", publicURL)

	assert.True(t, storage.has("public/u1/m1.jpg"))
	assert.False(t, storage.has(*rec.OriginalPath), "quarantine object should be removed after promote")
}

func TestMoverPromoteSkipsCopyWhenPublicExists(t *testing.T) {
	storage := newMemStorage()
	rec := quarantinedRecord(storage)
	storage.put("public/u1/m1.jpg", []byte("jpeg-bytes"))
	// A copy attempt would fail, proving the existing public object
	// short-circuits it.
	storage.failCopy = true
	mover := NewMover(storage, moverBaseURL)

	publicPath, _, err := mover.Promote(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "public/u1/m1.jpg", publicPath)
	assert.False(t, storage.has(*rec.OriginalPath))
}

func TestMoverPromoteBothObjectsGone(t *testing.T) {
	storage := newMemStorage()
	key := QuarantineKey("u1", "m1", "cat.jpg")
	rec := &models.MediaRecord{ID: "m1", OwnerUID: "u1", Status: models.StatusProcessing, OriginalPath: &key}
	mover := NewMover(storage, moverBaseURL)

	_, _, err := mover.Promote(context.Background(), rec)
	assert.ErrorIs(t, err, moderr.ErrInvalidState)
}

func TestMoverPromoteNoOriginalPath(t *testing.T) {
	mover := NewMover(newMemStorage(), moverBaseURL)
	rec := &models.MediaRecord{ID: "m1", OwnerUID: "u1", Status: models.StatusProcessing}

	_, _, err := mover.Promote(context.Background(), rec)
	assert.ErrorIs(t, err, moderr.ErrInvalidState)
}

func TestMoverPromoteMalformedOriginalKey(t *testing.T) {
	mover := NewMover(newMemStorage(), moverBaseURL)
	bad := "uploads/u1/m1/cat.jpg"
	rec := &models.MediaRecord{ID: "m1", OwnerUID: "u1", Status: models.StatusProcessing, OriginalPath: &bad}

	_, _, err := mover.Promote(context.Background(), rec)
	assert.ErrorIs(t, err, moderr.ErrInvalidState)
}

func TestMoverPromoteCopyFailure(t *testing.T) {
	storage := newMemStorage()
	rec := quarantinedRecord(storage)
	storage.failCopy = true
	mover := NewMover(storage, moverBaseURL)

	_, _, err := mover.Promote(context.Background(), rec)
	assert.ErrorIs(t, err, moderr.ErrStorage)
	assert.True(t, storage.has(*rec.OriginalPath), "original must survive a failed copy")
}

func TestMoverPromoteDeleteFailureIsSwallowed(t *testing.T) {
	storage := newMemStorage()
	rec := quarantinedRecord(storage)
	mover := NewMover(storage, moverBaseURL)

	storage.failDelete = true
	publicPath, _, err := mover.Promote(context.Background(), rec)
	require.NoError(t, err, "a leaked quarantine object must not fail promotion")
	assert.True(t, storage.has(publicPath))
}

func TestMoverDiscard(t *testing.T) {
	storage := newMemStorage()
	key := QuarantineKey("u1", "m1", "cat.jpg")
	storage.put(key, []byte("jpeg-bytes"))
	mover := NewMover(storage, moverBaseURL)

	mover.Discard(context.Background(), key)
	assert.False(t, storage.has(key))

	// Discarding again, or with failures, must not panic.
	mover.Discard(context.Background(), key)
	storage.failDelete = true
	mover.Discard(context.Background(), key)
}
