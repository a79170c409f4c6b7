package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LanderBuys/strivon-sub004/internal/models"
	"github.com/LanderBuys/strivon-sub004/internal/moderr"
)

type MediaRepository struct {
	pool *pgxpool.Pool
}

func NewMediaRepository(pool *pgxpool.Pool) *MediaRepository {
	return &MediaRepository{pool: pool}
}

const mediaColumns = `id, owner_uid, media_type, status, original_path, public_path, public_url,
	gore_score, provider, flags, reviewed_by, reviewed_at, created_at, updated_at`

func scanMedia(row pgx.Row) (*models.MediaRecord, error) {
	rec := &models.MediaRecord{}
	err := row.Scan(
		&rec.ID, &rec.OwnerUID, &rec.Type, &rec.Status,
		&rec.OriginalPath, &rec.PublicPath, &rec.PublicURL,
		&rec.GoreScore, &rec.Provider, &rec.Flags,
		&rec.ReviewedBy, &rec.ReviewedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByID loads one media record, or moderr.ErrNotFound.
func (r *MediaRepository) GetByID(ctx context.Context, id string) (*models.MediaRecord, error) {
	rec, err := scanMedia(r.pool.QueryRow(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, moderr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get media %s: %w", id, err)
	}
	return rec, nil
}

// UpsertIngested records a quarantine upload: creates the media record on
// first sight, or resets an existing one to processing with the new
// original path (client re-upload before a decision). created_at is only
// written once.
func (r *MediaRepository) UpsertIngested(ctx context.Context, id, ownerUID, mediaType, originalPath string) (*models.MediaRecord, error) {
	rec, err := scanMedia(r.pool.QueryRow(ctx, `
		INSERT INTO media (id, owner_uid, media_type, status, original_path)
		VALUES ($1, $2, $3, 'processing', $4)
		ON CONFLICT (id) DO UPDATE
		SET status = 'processing',
		    original_path = EXCLUDED.original_path,
		    public_path = NULL,
		    public_url = NULL,
		    updated_at = NOW()
		RETURNING `+mediaColumns, id, ownerUID, mediaType, originalPath))
	if err != nil {
		return nil, fmt.Errorf("upsert ingested media %s: %w", id, err)
	}
	return rec, nil
}

// ApplyDecision performs the final write of a moderation decision in a
// single transaction: the media record's status and moderation fields, the
// queue entry (created for needs_review, deleted otherwise), and the fan-out
// to every post referencing the media id. Re-applying the decision a record
// already carries is a no-op, which is what redelivered finalize events
// need.
func (r *MediaRepository) ApplyDecision(ctx context.Context, update models.DecisionUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin decision tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var current models.MediaStatus
	var mediaType string
	err = tx.QueryRow(ctx,
		`SELECT status, media_type FROM media WHERE id = $1 FOR UPDATE`,
		update.MediaID).Scan(&current, &mediaType)
	if errors.Is(err, pgx.ErrNoRows) {
		return moderr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock media %s: %w", update.MediaID, err)
	}

	if current == update.Status {
		// Redelivered event or racing admin with the same outcome.
		return tx.Commit(ctx)
	}
	if !current.CanTransition(update.Status) {
		return fmt.Errorf("%w: %s -> %s", moderr.ErrInvalidState, current, update.Status)
	}

	_, err = tx.Exec(ctx, `
		UPDATE media
		SET status = $2,
		    gore_score = $3,
		    provider = $4,
		    flags = COALESCE($5, '{}'),
		    original_path = CASE WHEN $2 = 'approved' THEN NULL ELSE original_path END,
		    public_path = $6,
		    public_url = $7,
		    reviewed_by = COALESCE($8, reviewed_by),
		    reviewed_at = COALESCE($9, reviewed_at),
		    updated_at = NOW()
		WHERE id = $1`,
		update.MediaID, update.Status, update.GoreScore, update.Provider,
		update.Flags, update.PublicPath, update.PublicURL,
		update.ReviewedBy, update.ReviewedAt)
	if err != nil {
		return fmt.Errorf("update media %s: %w", update.MediaID, err)
	}

	// Queue entry exists iff status is needs_review.
	if update.Status == models.StatusNeedsReview {
		_, err = tx.Exec(ctx, `
			INSERT INTO moderation_queue (media_id, priority)
			VALUES ($1, 0)
			ON CONFLICT (media_id) DO NOTHING`, update.MediaID)
	} else {
		_, err = tx.Exec(ctx,
			`DELETE FROM moderation_queue WHERE media_id = $1`, update.MediaID)
	}
	if err != nil {
		return fmt.Errorf("update moderation queue for %s: %w", update.MediaID, err)
	}

	switch update.Status {
	case models.StatusApproved:
		mediaJSON, err := json.Marshal([]models.PostMedia{{
			ID:   update.MediaID,
			Type: mediaType,
			URL:  deref(update.PublicURL),
		}})
		if err != nil {
			return fmt.Errorf("marshal post media: %w", err)
		}
		_, err = tx.Exec(ctx, `
			UPDATE posts
			SET status = $2, visibility = $3, media = $4, updated_at = NOW()
			WHERE media_id = $1`,
			update.MediaID, models.PostStatusPublished, models.VisibilityPublic, mediaJSON)
		if err != nil {
			return fmt.Errorf("publish posts for %s: %w", update.MediaID, err)
		}
	case models.StatusRejected:
		_, err = tx.Exec(ctx, `
			UPDATE posts SET status = $2, updated_at = NOW() WHERE media_id = $1`,
			update.MediaID, models.PostStatusRejected)
		if err != nil {
			return fmt.Errorf("reject posts for %s: %w", update.MediaID, err)
		}
	}

	return tx.Commit(ctx)
}

// ListStuckProcessing returns media left in processing longer than cutoff,
// typically because the ingestion handler failed after the initial record
// write. Used by the reconcile tool to re-run scoring.
func (r *MediaRepository) ListStuckProcessing(ctx context.Context, cutoff time.Time, limit int) ([]models.MediaRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+mediaColumns+`
		FROM media
		WHERE status = 'processing' AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list stuck media: %w", err)
	}
	defer rows.Close()

	var records []models.MediaRecord
	for rows.Next() {
		rec, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// GetStats returns aggregate counts per lifecycle status.
func (r *MediaRepository) GetStats(ctx context.Context) (*models.ModerationStats, error) {
	stats := &models.ModerationStats{}
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'processing'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'needs_review'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			(SELECT COUNT(*) FROM moderation_queue)
		FROM media`).Scan(
		&stats.Processing, &stats.Approved, &stats.NeedsReview, &stats.Rejected,
		&stats.QueueDepth,
	)
	if err != nil {
		return nil, fmt.Errorf("moderation stats: %w", err)
	}
	return stats, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
