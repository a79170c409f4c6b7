package models

import "time"

// ModerationQueueEntry marks a media item as awaiting human review. An
// entry exists exactly while the media record's status is needs_review.
type ModerationQueueEntry struct {
	MediaID   string    `json:"media_id"`
	Priority  int       `json:"priority"` // 0 = first-come-first-served
	CreatedAt time.Time `json:"created_at"`
}

// QueueItem is a queue entry joined with its media summary, as served to
// the reviewer dashboard.
type QueueItem struct {
	MediaID      string    `json:"media_id"`
	OwnerUID     string    `json:"owner_uid"`
	Type         string    `json:"type"`
	GoreScore    float64   `json:"gore_score"`
	Flags        []string  `json:"flags,omitempty"`
	OriginalPath string    `json:"original_path"`
	Priority     int       `json:"priority"`
	QueuedAt     time.Time `json:"queued_at"`
}

// ModerationStats holds aggregate pipeline counts for the admin dashboard.
type ModerationStats struct {
	Processing  int `json:"processing"`
	Approved    int `json:"approved"`
	NeedsReview int `json:"needs_review"`
	Rejected    int `json:"rejected"`
	QueueDepth  int `json:"queue_depth"`
}
