package scorer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticScorer(t *testing.T) {
	s := NewStaticScorer(0.01)
	result, err := s.Score(context.Background(), "m1", []byte("bytes"))
	require.NoError(t, err)
	assert.Equal(t, 0.01, result.GoreScore)
	assert.False(t, result.CSAM)
	assert.Empty(t, result.Flags)
	assert.Equal(t, "static", result.Provider)
}

func respWithClasses(classes ...hiveClass) hiveResp {
	payload := map[string]interface{}{
		"status": []interface{}{
			map[string]interface{}{
				"response": map[string]interface{}{
					"output": []interface{}{
						map[string]interface{}{"classes": classes},
					},
				},
			},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	var resp hiveResp
	if err := json.Unmarshal(raw, &resp); err != nil {
		panic(err)
	}
	return resp
}

func TestSummarizeFoldsGoreClasses(t *testing.T) {
	result := summarize(respWithClasses(
		hiveClass{Class: "very_bloody", Score: 0.3},
		hiveClass{Class: "human_corpse", Score: 0.9},
		hiveClass{Class: "hanging", Score: 0.1},
	))

	assert.Equal(t, 0.9, result.GoreScore, "composite is the max gore class score")
	assert.False(t, result.CSAM)
	assert.Equal(t, []string{"human_corpse"}, result.Flags)
	assert.Equal(t, "hiveai", result.Provider)
}

func TestSummarizeIgnoresUnknownClasses(t *testing.T) {
	result := summarize(respWithClasses(
		hiveClass{Class: "general_nsfw", Score: 0.99},
		hiveClass{Class: "very_bloody", Score: 0.2},
	))

	assert.Equal(t, 0.2, result.GoreScore)
	assert.Empty(t, result.Flags)
}

func TestSummarizeFlagsCSAM(t *testing.T) {
	result := summarize(respWithClasses(
		hiveClass{Class: "yes_csam", Score: 0.7},
		hiveClass{Class: "very_bloody", Score: 0.1},
	))

	assert.True(t, result.CSAM)
	assert.Contains(t, result.Flags, "yes_csam")
}

func TestSummarizeLowCSAMScoreDoesNotFlag(t *testing.T) {
	result := summarize(respWithClasses(
		hiveClass{Class: "yes_csam", Score: 0.2},
	))

	assert.False(t, result.CSAM)
	assert.Empty(t, result.Flags)
}

func TestSummarizeEmptyResponse(t *testing.T) {
	result := summarize(hiveResp{})
	assert.Zero(t, result.GoreScore)
	assert.False(t, result.CSAM)
	assert.Empty(t, result.Flags)
}
