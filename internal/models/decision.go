package models

import "time"

// Decision thresholds for the automatic moderation policy. These are fixed
// constants rather than per-call configuration: the scorer emits a single
// composite gore score plus a CSAM flag, and the cutoffs below are the
// product policy.
const (
	RejectThreshold = 0.85
	ReviewThreshold = 0.55
)

// ScoreResult is what a scorer returns for one media object.
type ScoreResult struct {
	GoreScore float64  `json:"gore_score"` // composite risk score in [0,1]
	CSAM      bool     `json:"csam"`       // forces rejection regardless of score
	Flags     []string `json:"flags,omitempty"`
	Provider  string   `json:"provider"`
}

// DecisionUpdate is the final write applied to a media record, its queue
// entry, and its referencing posts in one transaction.
type DecisionUpdate struct {
	MediaID    string
	Status     MediaStatus
	GoreScore  float64
	Provider   string
	Flags      []string
	PublicPath *string // set when Status is approved
	PublicURL  *string
	ReviewedBy *string // set only by admin actions
	ReviewedAt *time.Time
}

// Decide maps a scorer result onto a lifecycle status. The CSAM flag
// overrides the score entirely.
func Decide(result ScoreResult) MediaStatus {
	if result.CSAM {
		return StatusRejected
	}
	if result.GoreScore >= RejectThreshold {
		return StatusRejected
	}
	if result.GoreScore >= ReviewThreshold {
		return StatusNeedsReview
	}
	return StatusApproved
}
