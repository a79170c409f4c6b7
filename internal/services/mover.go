package services

import (
	"context"
	"fmt"
	"log"

	"github.com/LanderBuys/strivon-sub004/internal/moderr"
	"github.com/LanderBuys/strivon-sub004/internal/models"
	"github.com/LanderBuys/strivon-sub004/internal/monitoring"
)

// Mover executes the storage side effects of a moderation decision:
// promoting an approved object out of quarantine, or discarding a rejected
// one. It never touches the media record itself.
type Mover struct {
	Storage       ObjectStorage
	PublicBaseURL string
}

func NewMover(storage ObjectStorage, publicBaseURL string) *Mover {
	return &Mover{Storage: storage, PublicBaseURL: publicBaseURL}
}

// Promote copies the quarantined object to its public key and deletes the
// original, returning the public key and URL. The order is fixed:
// copy-then-delete, so a crash mid-operation leaves the original
// recoverable.
//
// Redelivery tolerance: when the public object already exists the copy is
// skipped and promotion proceeds to cleanup. When both the public and the
// original object are missing, the media is gone (e.g. a racing reject
// already discarded it) and the caller gets a state error rather than a
// silent success.
func (m *Mover) Promote(ctx context.Context, rec *models.MediaRecord) (publicPath, publicURL string, err error) {
	if rec.OriginalPath == nil {
		return "", "", fmt.Errorf("%w: media %s has no quarantine object", moderr.ErrInvalidState, rec.ID)
	}
	originalKey := *rec.OriginalPath

	ref, ok := ParseQuarantineKey(originalKey)
	if !ok {
		return "", "", fmt.Errorf("%w: malformed quarantine key %q", moderr.ErrInvalidState, originalKey)
	}

	publicKey := PublicKey(rec.OwnerUID, rec.ID, ref.FileName)

	alreadyPublic, err := m.Storage.Exists(ctx, publicKey)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", moderr.ErrStorage, err)
	}
	if !alreadyPublic {
		originalExists, err := m.Storage.Exists(ctx, originalKey)
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", moderr.ErrStorage, err)
		}
		if !originalExists {
			return "", "", fmt.Errorf("%w: quarantine object %s no longer exists", moderr.ErrInvalidState, originalKey)
		}
		if err := m.Storage.Copy(ctx, originalKey, publicKey); err != nil {
			monitoring.StorageErrors.WithLabelValues("copy").Inc()
			return "", "", fmt.Errorf("%w: %v", moderr.ErrStorage, err)
		}
	}

	if err := m.Storage.Delete(ctx, originalKey); err != nil {
		// The public copy is in place; a leaked quarantine object is
		// preferable to failing the approval.
		monitoring.StorageErrors.WithLabelValues("delete").Inc()
		log.Printf("[Mover] Failed to delete quarantine object %s after promote: %v", originalKey, err)
	}

	return publicKey, PublicURL(m.PublicBaseURL, publicKey), nil
}

// Discard deletes the quarantined object of a rejected media item.
// Failures are logged and swallowed: the record is marked rejected either
// way, trading a possible storage leak for record truth.
func (m *Mover) Discard(ctx context.Context, originalKey string) {
	if err := m.Storage.Delete(ctx, originalKey); err != nil {
		monitoring.StorageErrors.WithLabelValues("delete").Inc()
		log.Printf("[Mover] Failed to delete rejected object %s: %v", originalKey, err)
	}
}
