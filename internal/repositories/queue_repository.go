package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LanderBuys/strivon-sub004/internal/models"
)

type QueueRepository struct {
	pool *pgxpool.Pool
}

func NewQueueRepository(pool *pgxpool.Pool) *QueueRepository {
	return &QueueRepository{pool: pool}
}

// List returns queue entries joined with their media summaries, highest
// priority first, then first-come-first-served.
func (r *QueueRepository) List(ctx context.Context, limit, offset int) ([]models.QueueItem, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, `
		SELECT q.media_id, m.owner_uid, m.media_type, m.gore_score, m.flags,
		       COALESCE(m.original_path, ''), q.priority, q.created_at
		FROM moderation_queue q
		JOIN media m ON m.id = q.media_id
		ORDER BY q.priority DESC, q.created_at ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list moderation queue: %w", err)
	}
	defer rows.Close()

	var items []models.QueueItem
	for rows.Next() {
		var item models.QueueItem
		if err := rows.Scan(&item.MediaID, &item.OwnerUID, &item.Type, &item.GoreScore,
			&item.Flags, &item.OriginalPath, &item.Priority, &item.QueuedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Depth returns the number of entries awaiting review.
func (r *QueueRepository) Depth(ctx context.Context) (int, error) {
	var depth int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM moderation_queue`).Scan(&depth)
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return depth, nil
}
