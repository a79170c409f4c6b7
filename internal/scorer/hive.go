package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/LanderBuys/strivon-sub004/internal/models"
)

const hiveTaskURL = "https://api.thehive.ai/api/v2/task/sync"

// HiveScorer classifies media through thehive.ai visual moderation API.
// Per-class scores are folded into the single composite gore score the
// decision policy consumes; the class list schema follows
// https://docs.thehive.ai/reference/classification.
type HiveScorer struct {
	Client   *http.Client
	APIToken string
}

type hiveResp struct {
	Status []struct {
		Response struct {
			Output []struct {
				Classes []hiveClass `json:"classes"`
			} `json:"output"`
		} `json:"response"`
	} `json:"status"`
}

type hiveClass struct {
	Class string  `json:"class"`
	Score float64 `json:"score"`
}

func NewHiveScorer(apiToken string) *HiveScorer {
	return &HiveScorer{
		Client:   &http.Client{Timeout: 30 * time.Second},
		APIToken: apiToken,
	}
}

// goreClasses are the violence/gore classes folded into the composite
// score. The composite is the maximum over these.
var goreClasses = map[string]bool{
	"very_bloody":   true,
	"human_corpse":  true,
	"hanging":       true,
	"yes_self_harm": true,
}

// csamClasses force rejection regardless of the composite score.
var csamClasses = map[string]bool{
	"yes_csam":             true,
	"child_sexual_content": true,
}

// flagThreshold is the per-class score above which the class name is kept
// as a flag on the media record.
const flagThreshold = 0.55

func (h *HiveScorer) Score(ctx context.Context, mediaID string, content []byte) (models.ScoreResult, error) {
	log.Printf("[Scorer] Sending media to thehive.ai mediaId=%s size=%d", mediaID, len(content))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("media", mediaID)
	if err != nil {
		return models.ScoreResult{}, err
	}
	if _, err := part.Write(content); err != nil {
		return models.ScoreResult{}, err
	}
	if err := writer.Close(); err != nil {
		return models.ScoreResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hiveTaskURL, body)
	if err != nil {
		return models.ScoreResult{}, err
	}
	req.Header.Set("Authorization", "Token "+h.APIToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	res, err := h.Client.Do(req)
	if err != nil {
		return models.ScoreResult{}, fmt.Errorf("hive request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return models.ScoreResult{}, fmt.Errorf("hive request failed: status %d", res.StatusCode)
	}

	respBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return models.ScoreResult{}, fmt.Errorf("read hive response: %w", err)
	}

	var parsed hiveResp
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return models.ScoreResult{}, fmt.Errorf("parse hive response: %w", err)
	}

	return summarize(parsed), nil
}

// summarize folds the per-class scores into the pipeline's composite result.
func summarize(resp hiveResp) models.ScoreResult {
	result := models.ScoreResult{Provider: "hiveai"}
	for _, status := range resp.Status {
		for _, out := range status.Response.Output {
			for _, cls := range out.Classes {
				if csamClasses[cls.Class] && cls.Score >= 0.5 {
					result.CSAM = true
				}
				if goreClasses[cls.Class] && cls.Score > result.GoreScore {
					result.GoreScore = cls.Score
				}
				if cls.Score >= flagThreshold && (goreClasses[cls.Class] || csamClasses[cls.Class]) {
					result.Flags = append(result.Flags, cls.Class)
				}
			}
		}
	}
	return result
}
