// Package scorer holds the pluggable media classification providers. The
// pipeline only consumes the composite result; the provider behind it is
// swappable per deployment.
package scorer

import (
	"context"

	"github.com/LanderBuys/strivon-sub004/internal/models"
)

// Scorer classifies one media object and returns a composite risk result.
type Scorer interface {
	Score(ctx context.Context, mediaID string, content []byte) (models.ScoreResult, error)
}

// StaticScorer is the placeholder provider: it returns a fixed score for
// every item and never flags CSAM. Deployments without a classification
// vendor run with this, which auto-approves everything below the review
// threshold.
type StaticScorer struct {
	GoreScore float64
}

func NewStaticScorer(score float64) *StaticScorer {
	return &StaticScorer{GoreScore: score}
}

func (s *StaticScorer) Score(_ context.Context, _ string, _ []byte) (models.ScoreResult, error) {
	return models.ScoreResult{
		GoreScore: s.GoreScore,
		CSAM:      false,
		Flags:     nil,
		Provider:  "static",
	}, nil
}
