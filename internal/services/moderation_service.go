package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/LanderBuys/strivon-sub004/internal/moderr"
	"github.com/LanderBuys/strivon-sub004/internal/models"
	"github.com/LanderBuys/strivon-sub004/internal/monitoring"
)

// UserStore is the slice of the user repository the ban action needs.
type UserStore interface {
	SetBanned(ctx context.Context, uid string, banned bool) error
}

// QueueStore serves the reviewer dashboard.
type QueueStore interface {
	List(ctx context.Context, limit, offset int) ([]models.QueueItem, error)
	Depth(ctx context.Context) (int, error)
}

// StatsStore provides aggregate pipeline counts.
type StatsStore interface {
	GetStats(ctx context.Context) (*models.ModerationStats, error)
}

// ModerationService implements the admin actions that resolve queued media
// and ban users. Authorization happens in the middleware before any of
// these run.
type ModerationService struct {
	Media MediaStore
	Users UserStore
	Queue QueueStore
	Stats StatsStore
	Mover *Mover
}

func NewModerationService(media MediaStore, users UserStore, queue QueueStore, stats StatsStore, mover *Mover) *ModerationService {
	return &ModerationService{Media: media, Users: users, Queue: queue, Stats: stats, Mover: mover}
}

// Approve promotes the media to public and finalizes the record with the
// reviewer's identity. Fails with ErrNotFound when the record doesn't
// exist and ErrInvalidState when there is no quarantine object left to
// promote (already promoted, or discarded by a racing reject).
func (s *ModerationService) Approve(ctx context.Context, mediaID, reviewerUID string) error {
	mediaID = strings.TrimSpace(mediaID)
	if mediaID == "" {
		return fmt.Errorf("%w: media_id is required", moderr.ErrInvalidArgument)
	}

	rec, err := s.Media.GetByID(ctx, mediaID)
	if err != nil {
		monitoring.AdminActions.WithLabelValues("approve", "error").Inc()
		return err
	}
	if rec.OriginalPath == nil {
		monitoring.AdminActions.WithLabelValues("approve", "error").Inc()
		return fmt.Errorf("%w: media %s has no quarantine object to promote", moderr.ErrInvalidState, mediaID)
	}

	publicPath, publicURL, err := s.Mover.Promote(ctx, rec)
	if err != nil {
		monitoring.AdminActions.WithLabelValues("approve", "error").Inc()
		return err
	}

	now := time.Now().UTC()
	err = s.Media.ApplyDecision(ctx, models.DecisionUpdate{
		MediaID:    mediaID,
		Status:     models.StatusApproved,
		GoreScore:  rec.GoreScore,
		Provider:   rec.Provider,
		Flags:      rec.Flags,
		PublicPath: &publicPath,
		PublicURL:  &publicURL,
		ReviewedBy: &reviewerUID,
		ReviewedAt: &now,
	})
	if err != nil {
		monitoring.AdminActions.WithLabelValues("approve", "error").Inc()
		return err
	}

	monitoring.AdminActions.WithLabelValues("approve", "ok").Inc()
	log.Printf("[Moderation] Approved mediaId=%s by=%s", mediaID, reviewerUID)
	return nil
}

// Reject discards the quarantined object (best effort) and finalizes the
// record as rejected. A missing record is a success: rejecting something
// that was never ingested has nothing to do.
func (s *ModerationService) Reject(ctx context.Context, mediaID, reviewerUID string) error {
	mediaID = strings.TrimSpace(mediaID)
	if mediaID == "" {
		return fmt.Errorf("%w: media_id is required", moderr.ErrInvalidArgument)
	}

	rec, err := s.Media.GetByID(ctx, mediaID)
	if errors.Is(err, moderr.ErrNotFound) {
		monitoring.AdminActions.WithLabelValues("reject", "noop").Inc()
		return nil
	}
	if err != nil {
		monitoring.AdminActions.WithLabelValues("reject", "error").Inc()
		return err
	}

	if rec.OriginalPath != nil {
		s.Mover.Discard(ctx, *rec.OriginalPath)
	}

	now := time.Now().UTC()
	err = s.Media.ApplyDecision(ctx, models.DecisionUpdate{
		MediaID:    mediaID,
		Status:     models.StatusRejected,
		GoreScore:  rec.GoreScore,
		Provider:   rec.Provider,
		Flags:      rec.Flags,
		ReviewedBy: &reviewerUID,
		ReviewedAt: &now,
	})
	if err != nil {
		monitoring.AdminActions.WithLabelValues("reject", "error").Inc()
		return err
	}

	monitoring.AdminActions.WithLabelValues("reject", "ok").Inc()
	log.Printf("[Moderation] Rejected mediaId=%s by=%s", mediaID, reviewerUID)
	return nil
}

// BanUser flips the ban flag. Idempotent: banning twice is the same as
// banning once.
func (s *ModerationService) BanUser(ctx context.Context, uid string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return fmt.Errorf("%w: uid is required", moderr.ErrInvalidArgument)
	}
	if err := s.Users.SetBanned(ctx, uid, true); err != nil {
		monitoring.AdminActions.WithLabelValues("ban", "error").Inc()
		return err
	}
	monitoring.AdminActions.WithLabelValues("ban", "ok").Inc()
	log.Printf("[Moderation] Banned uid=%s", uid)
	return nil
}

// ListQueue returns the pending review queue for the dashboard.
func (s *ModerationService) ListQueue(ctx context.Context, limit, offset int) ([]models.QueueItem, error) {
	return s.Queue.List(ctx, limit, offset)
}

// PipelineStats returns aggregate per-status counts.
func (s *ModerationService) PipelineStats(ctx context.Context) (*models.ModerationStats, error) {
	return s.Stats.GetStats(ctx)
}
