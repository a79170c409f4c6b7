package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/LanderBuys/strivon-sub004/internal/moderr"
	"github.com/LanderBuys/strivon-sub004/internal/models"
	"github.com/LanderBuys/strivon-sub004/internal/monitoring"
	"github.com/LanderBuys/strivon-sub004/internal/scorer"
)

// MediaStore is the slice of the media repository the pipeline services
// need. Satisfied by repositories.MediaRepository.
type MediaStore interface {
	GetByID(ctx context.Context, id string) (*models.MediaRecord, error)
	UpsertIngested(ctx context.Context, id, ownerUID, mediaType, originalPath string) (*models.MediaRecord, error)
	ApplyDecision(ctx context.Context, update models.DecisionUpdate) error
}

// IngestionService reacts to object-store finalize events under the
// quarantine prefix: it records the upload, scores it, and applies the
// automatic decision.
type IngestionService struct {
	Media   MediaStore
	Storage ObjectStorage
	Scorer  scorer.Scorer
	Mover   *Mover
}

func NewIngestionService(media MediaStore, storage ObjectStorage, sc scorer.Scorer, mover *Mover) *IngestionService {
	return &IngestionService{Media: media, Storage: storage, Scorer: sc, Mover: mover}
}

// HandleFinalize processes one finalized object key. Keys outside the
// quarantine layout are skipped silently. Any failure after the initial
// record write leaves the record in processing and returns an error so the
// event source redelivers; every side effect on this path tolerates being
// run again.
func (s *IngestionService) HandleFinalize(ctx context.Context, key string) error {
	ref, ok := ParseQuarantineKey(key)
	if !ok {
		return nil
	}

	// A terminal record never re-enters the pipeline: a redelivered event
	// after the decision landed has nothing left to do, and resetting an
	// approved or rejected record would break the closed transition table.
	existing, err := s.Media.GetByID(ctx, ref.MediaID)
	if err != nil && !errors.Is(err, moderr.ErrNotFound) {
		return fmt.Errorf("load media %s: %w", ref.MediaID, err)
	}
	if existing != nil && existing.Status.Terminal() {
		log.Printf("[Ingestion] Skipping finalize for decided mediaId=%s status=%s", existing.ID, existing.Status)
		return nil
	}

	mediaType := models.MediaTypeFromFilename(ref.FileName)
	rec, err := s.Media.UpsertIngested(ctx, ref.MediaID, ref.OwnerUID, mediaType, key)
	if err != nil {
		return fmt.Errorf("record ingestion for %s: %w", ref.MediaID, err)
	}

	log.Printf("[Ingestion] Scoring mediaId=%s owner=%s type=%s", rec.ID, rec.OwnerUID, rec.Type)

	// A redelivered event can arrive after a crash that already promoted
	// the object, so the public key serves as the content fallback.
	result, err := s.score(ctx, rec.ID, key, PublicKey(ref.OwnerUID, ref.MediaID, ref.FileName))
	if err != nil {
		return fmt.Errorf("score media %s: %w", rec.ID, err)
	}

	return s.applyAutomaticDecision(ctx, rec, result)
}

// score downloads the object from the first readable key and runs it
// through the configured provider.
func (s *IngestionService) score(ctx context.Context, mediaID string, keys ...string) (models.ScoreResult, error) {
	var content []byte
	var lastErr error
	for _, key := range keys {
		reader, _, err := s.Storage.Download(ctx, key)
		if err != nil {
			lastErr = err
			continue
		}
		content, err = io.ReadAll(reader)
		reader.Close()
		if err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return models.ScoreResult{}, lastErr
	}

	return s.Scorer.Score(ctx, mediaID, content)
}

// applyAutomaticDecision runs the storage side effects for the decided
// status, then performs the final record write. The ordering matters: an
// observer must never see status=approved before the public copy exists.
func (s *IngestionService) applyAutomaticDecision(ctx context.Context, rec *models.MediaRecord, result models.ScoreResult) error {
	status := models.Decide(result)

	update := models.DecisionUpdate{
		MediaID:   rec.ID,
		Status:    status,
		GoreScore: result.GoreScore,
		Provider:  result.Provider,
		Flags:     result.Flags,
	}

	switch status {
	case models.StatusApproved:
		publicPath, publicURL, err := s.Mover.Promote(ctx, rec)
		if err != nil {
			return fmt.Errorf("promote media %s: %w", rec.ID, err)
		}
		update.PublicPath = &publicPath
		update.PublicURL = &publicURL
	case models.StatusRejected:
		if rec.OriginalPath != nil {
			s.Mover.Discard(ctx, *rec.OriginalPath)
		}
	case models.StatusNeedsReview:
		// The object stays in quarantine until a human decides.
	}

	if err := s.Media.ApplyDecision(ctx, update); err != nil {
		return fmt.Errorf("apply decision for %s: %w", rec.ID, err)
	}

	monitoring.MediaIngested.WithLabelValues(string(status)).Inc()
	log.Printf("[Ingestion] Decided mediaId=%s status=%s goreScore=%.2f provider=%s",
		rec.ID, status, result.GoreScore, result.Provider)
	return nil
}

// Reingest re-runs scoring and the automatic decision for a record that
// was left in processing by an earlier failure. Used by the reconcile
// tool.
func (s *IngestionService) Reingest(ctx context.Context, rec *models.MediaRecord) error {
	if rec.Status != models.StatusProcessing {
		return nil
	}
	if rec.OriginalPath == nil {
		return fmt.Errorf("media %s is processing but has no quarantine object", rec.ID)
	}

	keys := []string{*rec.OriginalPath}
	if ref, ok := ParseQuarantineKey(*rec.OriginalPath); ok {
		keys = append(keys, PublicKey(ref.OwnerUID, ref.MediaID, ref.FileName))
	}
	result, err := s.score(ctx, rec.ID, keys...)
	if err != nil {
		return fmt.Errorf("score media %s: %w", rec.ID, err)
	}
	return s.applyAutomaticDecision(ctx, rec, result)
}

// StuckCutoff converts the configured reconcile window to an absolute
// time.
func StuckCutoff(minutes int) time.Time {
	if minutes <= 0 {
		minutes = 30
	}
	return time.Now().Add(-time.Duration(minutes) * time.Minute)
}
