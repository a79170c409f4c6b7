package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LanderBuys/strivon-sub004/internal/models"
)

func newIngestionFixture(result models.ScoreResult) (*IngestionService, *memMediaStore, *memStorage, *fixedScorer) {
	storage := newMemStorage()
	store := newMemMediaStore()
	sc := &fixedScorer{result: result}
	mover := NewMover(storage, moverBaseURL)
	return NewIngestionService(store, storage, sc, mover), store, storage, sc
}

func TestHandleFinalizeApproves(t *testing.T) {
	svc, store, storage, _ := newIngestionFixture(models.ScoreResult{GoreScore: 0.01, Provider: "static"})
	key := QuarantineKey("u1", "m1", "cat.jpg")
	storage.put(key, []byte("jpeg-bytes"))

	require.NoError(t, svc.HandleFinalize(context.Background(), key))

	rec := store.record("m1")
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusApproved, rec.Status)
	assert.Equal(t, "u1", rec.OwnerUID)
	assert.Equal(t, models.MediaTypeImage, rec.Type)
	assert.Nil(t, rec.OriginalPath)
	require.NotNil(t, rec.PublicPath)
	assert.Equal(t, "public/u1/m1.jpg", *rec.PublicPath)
	require.NotNil(t, rec.PublicURL)
	assert.Equal(t, moverBaseURL+"/public/u1/m1.jpg", *rec.PublicURL)

	assert.True(t, storage.has("public/u1/m1.jpg"))
	assert.False(t, storage.has(key))
	assert.False(t, store.queued("m1"))
}

func TestHandleFinalizeRejects(t *testing.T) {
	svc, store, storage, _ := newIngestionFixture(models.ScoreResult{GoreScore: 0.97, Provider: "static"})
	key := QuarantineKey("u1", "m2", "gore.png")
	storage.put(key, []byte("png-bytes"))

	require.NoError(t, svc.HandleFinalize(context.Background(), key))

	rec := store.record("m2")
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusRejected, rec.Status)
	assert.Nil(t, rec.PublicPath)
	require.NotNil(t, rec.OriginalPath, "rejected record keeps its original path")

	assert.False(t, storage.has(key), "rejected object is discarded from storage")
	assert.False(t, storage.has("public/u1/m2.png"))
}

func TestHandleFinalizeCSAMRejectsRegardlessOfScore(t *testing.T) {
	svc, store, storage, _ := newIngestionFixture(models.ScoreResult{GoreScore: 0.0, CSAM: true, Flags: []string{"yes_csam"}, Provider: "hiveai"})
	key := QuarantineKey("u1", "m3", "file.jpg")
	storage.put(key, []byte("bytes"))

	require.NoError(t, svc.HandleFinalize(context.Background(), key))

	rec := store.record("m3")
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusRejected, rec.Status)
	assert.Equal(t, []string{"yes_csam"}, rec.Flags)
	assert.False(t, storage.has(key))
}

func TestHandleFinalizeQueuesMidBand(t *testing.T) {
	svc, store, storage, _ := newIngestionFixture(models.ScoreResult{GoreScore: 0.7, Provider: "static"})
	key := QuarantineKey("u1", "m4", "clip.mp4")
	storage.put(key, []byte("mp4-bytes"))

	require.NoError(t, svc.HandleFinalize(context.Background(), key))

	rec := store.record("m4")
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusNeedsReview, rec.Status)
	assert.Equal(t, models.MediaTypeVideo, rec.Type)
	require.NotNil(t, rec.OriginalPath)
	assert.True(t, storage.has(key), "queued object stays in quarantine")
	assert.True(t, store.queued("m4"))
}

func TestHandleFinalizeIgnoresForeignKeys(t *testing.T) {
	svc, store, storage, sc := newIngestionFixture(models.ScoreResult{GoreScore: 0.01})
	storage.put("public/u1/other.jpg", []byte("bytes"))

	require.NoError(t, svc.HandleFinalize(context.Background(), "public/u1/other.jpg"))
	require.NoError(t, svc.HandleFinalize(context.Background(), "backups/dump.sql"))

	assert.Equal(t, 0, sc.calls)
	assert.Nil(t, store.record("other"))
}

func TestHandleFinalizeMissingObjectFails(t *testing.T) {
	svc, store, _, _ := newIngestionFixture(models.ScoreResult{GoreScore: 0.01})
	key := QuarantineKey("u1", "m5", "gone.jpg")

	err := svc.HandleFinalize(context.Background(), key)
	require.Error(t, err)

	// The record exists but stays in processing for redelivery.
	rec := store.record("m5")
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusProcessing, rec.Status)
}

func TestHandleFinalizeRedeliveryAfterApproval(t *testing.T) {
	svc, store, storage, _ := newIngestionFixture(models.ScoreResult{GoreScore: 0.01, Provider: "static"})
	key := QuarantineKey("u1", "m6", "cat.jpg")
	storage.put(key, []byte("jpeg-bytes"))

	require.NoError(t, svc.HandleFinalize(context.Background(), key))
	// Quarantine object is gone; the event arrives again anyway.
	require.NoError(t, svc.HandleFinalize(context.Background(), key))

	rec := store.record("m6")
	require.NotNil(t, rec)
	assert.Equal(t, models.StatusApproved, rec.Status)
	require.NotNil(t, rec.PublicPath)
	assert.Equal(t, "public/u1/m6.jpg", *rec.PublicPath)
	assert.True(t, storage.has("public/u1/m6.jpg"))
}

func TestHandleFinalizeRedeliveryAfterRejection(t *testing.T) {
	svc, store, storage, sc := newIngestionFixture(models.ScoreResult{GoreScore: 0.97, Provider: "static"})
	key := QuarantineKey("u1", "m9", "gore.png")
	storage.put(key, []byte("png-bytes"))

	require.NoError(t, svc.HandleFinalize(context.Background(), key))
	assert.Equal(t, models.StatusRejected, store.record("m9").Status)
	scoredOnce := sc.calls

	// Discarded object, redelivered event: nothing left to do.
	require.NoError(t, svc.HandleFinalize(context.Background(), key))

	rec := store.record("m9")
	assert.Equal(t, models.StatusRejected, rec.Status, "terminal record must not re-enter processing")
	assert.Equal(t, scoredOnce, sc.calls, "no re-scoring of a decided record")
	assert.False(t, store.queued("m9"))
}

func TestHandleFinalizeReuploadToApprovedIsIgnored(t *testing.T) {
	svc, store, storage, _ := newIngestionFixture(models.ScoreResult{GoreScore: 0.01, Provider: "static"})
	key := QuarantineKey("u1", "m10", "cat.jpg")
	storage.put(key, []byte("jpeg-bytes"))

	require.NoError(t, svc.HandleFinalize(context.Background(), key))
	require.Equal(t, models.StatusApproved, store.record("m10").Status)

	// A fresh upload to a decided id must not reset the record while the
	// old public object is still served.
	storage.put(key, []byte("different-bytes"))
	require.NoError(t, svc.HandleFinalize(context.Background(), key))

	rec := store.record("m10")
	assert.Equal(t, models.StatusApproved, rec.Status)
	require.NotNil(t, rec.PublicPath)
	assert.Equal(t, "public/u1/m10.jpg", *rec.PublicPath)
	require.NotNil(t, rec.PublicURL)
}

func TestHandleFinalizeRedeliveryAfterRecordFailure(t *testing.T) {
	svc, store, storage, _ := newIngestionFixture(models.ScoreResult{GoreScore: 0.01, Provider: "static"})
	key := QuarantineKey("u1", "m7", "cat.jpg")
	storage.put(key, []byte("jpeg-bytes"))

	// First delivery promotes the object but the final write fails.
	store.failApply = true
	require.Error(t, svc.HandleFinalize(context.Background(), key))
	assert.Equal(t, models.StatusProcessing, store.record("m7").Status)
	assert.True(t, storage.has("public/u1/m7.jpg"))

	// Redelivery completes using the already-promoted copy.
	store.failApply = false
	require.NoError(t, svc.HandleFinalize(context.Background(), key))
	assert.Equal(t, models.StatusApproved, store.record("m7").Status)
}

func TestReingest(t *testing.T) {
	svc, store, storage, _ := newIngestionFixture(models.ScoreResult{GoreScore: 0.7, Provider: "static"})
	key := QuarantineKey("u1", "m8", "cat.jpg")
	storage.put(key, []byte("jpeg-bytes"))

	rec, err := store.UpsertIngested(context.Background(), "m8", "u1", models.MediaTypeImage, key)
	require.NoError(t, err)

	require.NoError(t, svc.Reingest(context.Background(), rec))
	assert.Equal(t, models.StatusNeedsReview, store.record("m8").Status)

	// Records no longer in processing are skipped.
	decided := store.record("m8")
	require.NoError(t, svc.Reingest(context.Background(), decided))
}
