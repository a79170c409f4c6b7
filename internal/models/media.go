package models

import (
	"path/filepath"
	"strings"
	"time"
)

// MediaStatus is the moderation lifecycle state of an uploaded media item.
// Transitions are restricted: processing may move to any decision state,
// needs_review may only be resolved by an admin, approved and rejected are
// terminal.
type MediaStatus string

const (
	StatusProcessing  MediaStatus = "processing"
	StatusApproved    MediaStatus = "approved"
	StatusNeedsReview MediaStatus = "needs_review"
	StatusRejected    MediaStatus = "rejected"
)

// legalTransitions is the closed transition table for MediaStatus.
var legalTransitions = map[MediaStatus][]MediaStatus{
	StatusProcessing:  {StatusApproved, StatusNeedsReview, StatusRejected},
	StatusNeedsReview: {StatusApproved, StatusRejected},
	StatusApproved:    {},
	StatusRejected:    {},
}

// Valid reports whether s is a known status value.
func (s MediaStatus) Valid() bool {
	_, ok := legalTransitions[s]
	return ok
}

// Terminal reports whether no further transition is allowed from s.
func (s MediaStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether moving from s to next is a legal transition.
func (s MediaStatus) CanTransition(next MediaStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MediaRecord tracks one uploaded media item through the moderation pipeline.
// Exactly one of OriginalPath / PublicPath is set at any time: the original
// (quarantine) path while the item is unreviewed or rejected in flight, the
// public path once approved.
type MediaRecord struct {
	ID       string      `json:"id"`
	OwnerUID string      `json:"owner_uid"`
	Type     string      `json:"type"` // "image" or "video"
	Status   MediaStatus `json:"status"`

	OriginalPath *string `json:"original_path,omitempty"` // quarantine key
	PublicPath   *string `json:"public_path,omitempty"`   // public key, approved only
	PublicURL    *string `json:"public_url,omitempty"`

	// Moderation outcome (written after scoring / admin review)
	GoreScore  float64    `json:"gore_score"`
	Provider   string     `json:"provider"`
	Flags      []string   `json:"flags,omitempty"`
	ReviewedBy *string    `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// videoExtensions are the upload extensions treated as video at ingestion.
var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".webm": true, ".avi": true,
}

// MediaTypeFromFilename infers image/video from the upload's file extension.
func MediaTypeFromFilename(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if videoExtensions[ext] {
		return MediaTypeVideo
	}
	return MediaTypeImage
}
