package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/testforge/dupcheck/internal/types"
)

func ranked(scores ...int) []types.SimilarityResult {
	var out []types.SimilarityResult
	for i, s := range scores {
		out = append(out, types.SimilarityResult{
			Candidate:  types.Candidate{ID: string(rune('a' + i)), DisplayName: "candidate"},
			Similarity: s,
		})
	}
	return out
}

func TestClassifyExactWinsOverRanking(t *testing.T) {
	hit := &types.Candidate{ID: "tc-1", DisplayName: "Login test"}
	v := Classify(DefaultThresholds(), hit, ranked(99))

	assert.True(t, v.IsDuplicate)
	assert.Equal(t, 100, v.Confidence)
	assert.Equal(t, types.MatchExact, v.MatchType)
	assert.Contains(t, v.Recommendation, "Exact match")
	assert.Contains(t, v.Recommendation, "Login test")
}

func TestClassifyThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name          string
		top           int
		wantDuplicate bool
		wantMatch     types.MatchType
	}{
		{"at near threshold", 85, true, types.MatchNear},
		{"one below near threshold", 84, false, types.MatchNear},
		{"at review threshold", 60, false, types.MatchNear},
		{"one below review threshold", 59, false, types.MatchNone},
		{"well above near", 97, true, types.MatchNear},
		{"well below review", 31, false, types.MatchNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Classify(DefaultThresholds(), nil, ranked(tt.top))
			assert.Equal(t, tt.wantDuplicate, v.IsDuplicate)
			assert.Equal(t, tt.wantMatch, v.MatchType)
			assert.Equal(t, tt.top, v.Confidence, "confidence carries the top score")
		})
	}
}

func TestClassifyEmptyRanking(t *testing.T) {
	v := Classify(DefaultThresholds(), nil, nil)
	assert.False(t, v.IsDuplicate)
	assert.Equal(t, 0, v.Confidence)
	assert.Equal(t, types.MatchNone, v.MatchType)
	assert.Equal(t, "No similar items found", v.Recommendation)
}

func TestClassifyAdvisoryBand(t *testing.T) {
	// Between review and near: flagged but not auto-classified. Callers key
	// off confidence >= 60 independently of the duplicate flag.
	v := Classify(DefaultThresholds(), nil, ranked(72))
	assert.False(t, v.IsDuplicate)
	assert.Equal(t, 72, v.Confidence)
	assert.Equal(t, types.MatchNear, v.MatchType)
	assert.Contains(t, v.Recommendation, "review")
}

func TestClassifyDeterministicRecommendation(t *testing.T) {
	a := Classify(DefaultThresholds(), nil, ranked(90))
	b := Classify(DefaultThresholds(), nil, ranked(90))
	assert.Equal(t, a.Recommendation, b.Recommendation)
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{Near: 101, Review: 60}.Validate())
	assert.Error(t, Thresholds{Near: 85, Review: -1}.Validate())
	assert.Error(t, Thresholds{Near: 50, Review: 60}.Validate(), "review cannot exceed near")
}
