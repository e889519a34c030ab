// Package classify turns a hash hit or a top similarity score into a graded
// duplicate verdict.
package classify

import (
	"fmt"

	"github.com/testforge/dupcheck/internal/types"
)

// Thresholds holds the score boundaries the classifier decides with.
// Both boundaries are inclusive on the high side.
type Thresholds struct {
	// Near marks the score at or above which content is classified a
	// duplicate.
	Near int

	// Review marks the score at or above which content is flagged for
	// human review without being auto-classified a duplicate. It matches
	// the downstream agent's warning threshold: callers key off
	// confidence >= Review independently of the duplicate flag.
	Review int
}

// DefaultThresholds returns the standard boundaries: near 85, review 60.
func DefaultThresholds() Thresholds {
	return Thresholds{Near: 85, Review: 60}
}

// Validate checks if the thresholds have valid values
func (t Thresholds) Validate() error {
	if t.Near < 0 || t.Near > 100 {
		return fmt.Errorf("near threshold must be between 0 and 100 (got %d)", t.Near)
	}
	if t.Review < 0 || t.Review > 100 {
		return fmt.Errorf("review threshold must be between 0 and 100 (got %d)", t.Review)
	}
	if t.Review > t.Near {
		return fmt.Errorf("review threshold (%d) cannot exceed near threshold (%d)", t.Review, t.Near)
	}
	return nil
}

// Verdict is the classifier's graded decision for one check.
type Verdict struct {
	IsDuplicate    bool
	Confidence     int
	MatchType      types.MatchType
	Recommendation string
}

// Classify evaluates the decision branches in strict priority order, first
// match wins:
//
//  1. exact hash hit: duplicate, confidence 100
//  2. top score >= Near: duplicate, confidence = top score
//  3. top score >= Review: not a duplicate, flagged for review
//  4. otherwise: no match, confidence = top score (0 when nothing ranked)
//
// The recommendation text is derived deterministically from the branch
// taken.
func Classify(t Thresholds, exactHit *types.Candidate, ranked []types.SimilarityResult) Verdict {
	if exactHit != nil {
		return Verdict{
			IsDuplicate: true,
			Confidence:  100,
			MatchType:   types.MatchExact,
			Recommendation: fmt.Sprintf(
				"Exact match found (%s) - consider reusing the existing item", exactHit.DisplayName),
		}
	}

	top := 0
	if len(ranked) > 0 {
		top = ranked[0].Similarity
	}

	switch {
	case len(ranked) > 0 && top >= t.Near:
		return Verdict{
			IsDuplicate: true,
			Confidence:  top,
			MatchType:   types.MatchNear,
			Recommendation: fmt.Sprintf(
				"Near-duplicate of %s (%d%% similar) - review before saving", ranked[0].Candidate.DisplayName, top),
		}
	case len(ranked) > 0 && top >= t.Review:
		return Verdict{
			IsDuplicate: false,
			Confidence:  top,
			MatchType:   types.MatchNear,
			Recommendation: fmt.Sprintf(
				"Similar to %s (%d%% similar) - flagged for human review", ranked[0].Candidate.DisplayName, top),
		}
	default:
		return Verdict{
			IsDuplicate:    false,
			Confidence:     top,
			MatchType:      types.MatchNone,
			Recommendation: "No similar items found",
		}
	}
}
