package models

import "time"

// Post statuses and visibilities touched by the moderation pipeline. Posts
// are owned by the main app; this service only flips them when the media
// they reference reaches a final decision.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusRejected  = "rejected"

	VisibilityPublic = "public"
)

// PostMedia is the denormalized media entry embedded in a post once the
// referenced media item is approved.
type PostMedia struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Post is the subset of the post record this pipeline reads and writes.
type Post struct {
	ID         string      `json:"id"`
	AuthorUID  string      `json:"author_uid"`
	MediaID    string      `json:"media_id"`
	Status     string      `json:"status"`
	Visibility string      `json:"visibility"`
	Media      []PostMedia `json:"media,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
