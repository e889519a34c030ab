// Package similarity ranks candidates by approximate string similarity
// against a normalized input text.
//
// For each candidate the ranker first applies a length-ratio prune: when
// min(len)/max(len) falls below the configured floor the pair cannot
// plausibly clear the near-duplicate threshold, so the full comparison is
// skipped and the candidate scores 0. Surviving candidates are scored with
// Levenshtein edit distance converted to a percentage:
//
//	similarity = round((1 - distance/maxLen) * 100)
//
// clamped to [0,100]. The score is symmetric under input/candidate swap.
// Full comparison costs O(n*m) per surviving candidate; callers are
// expected to cap input size upstream.
package similarity

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/testforge/dupcheck/internal/types"
)

// RankCandidate pairs a candidate with its pre-normalized canonical text.
// Normalization happens in the facade so the ranker stays a pure CPU step.
type RankCandidate struct {
	Candidate     types.Candidate
	CanonicalText string
}

// Ranker scores and orders candidates against an input text.
type Ranker struct {
	// LengthRatioFloor prunes pairs whose length ratio falls below it.
	// Two strings whose lengths differ by more than 2x (floor 0.5) cannot
	// plausibly score above the near-duplicate threshold.
	LengthRatioFloor float64

	// MinSimilarity drops results scoring below it to keep output meaningful.
	MinSimilarity int

	// TopK truncates the ranked output.
	TopK int

	// MaxWorkers bounds the parallel per-candidate comparisons.
	MaxWorkers int
}

// NewRanker returns a ranker with the default prune floor (0.5), result
// floor (30), top-K (5), and a worker bound of GOMAXPROCS.
func NewRanker() *Ranker {
	return &Ranker{
		LengthRatioFloor: 0.5,
		MinSimilarity:    30,
		TopK:             5,
		MaxWorkers:       runtime.GOMAXPROCS(0),
	}
}

// Rank scores every candidate against inputText and returns the surviving
// results sorted by similarity descending (ties broken by candidate id
// ascending, so the order is deterministic regardless of completion order),
// truncated to TopK.
//
// Candidates are independent and read-only, so scoring fans out across a
// bounded worker pool. If ctx is canceled mid-scan, Rank stops scheduling
// comparisons and returns the best-effort partial ranking together with the
// context error; callers decide whether the partial result is usable.
func (r *Ranker) Rank(ctx context.Context, inputText string, candidates []RankCandidate) ([]types.SimilarityResult, error) {
	if len(candidates) == 0 {
		return []types.SimilarityResult{}, ctx.Err()
	}

	workers := r.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	inputLen := len([]rune(inputText))

	// scores[i] < 0 marks a candidate that was never compared (canceled).
	scores := make([]int, len(candidates))
	for i := range scores {
		scores[i] = -1
	}

	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for i := range candidates {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Canceled: stop scheduling, keep what has finished.
			break
		}
		wg.Add(1)
		go func(i int) {
			defer sem.Release(1)
			defer wg.Done()
			scores[i] = r.score(inputText, inputLen, candidates[i].CanonicalText)
		}(i)
	}
	wg.Wait()

	results := make([]types.SimilarityResult, 0, len(candidates))
	for i, c := range candidates {
		if scores[i] < r.MinSimilarity {
			continue
		}
		results = append(results, types.SimilarityResult{
			Candidate:  c.Candidate,
			Similarity: scores[i],
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Candidate.ID < results[j].Candidate.ID
	})

	if r.TopK > 0 && len(results) > r.TopK {
		results = results[:r.TopK]
	}

	return results, ctx.Err()
}

// score computes the similarity percentage for one pair, applying the
// length-ratio prune before the full edit-distance computation.
func (r *Ranker) score(inputText string, inputLen int, candidateText string) int {
	candidateLen := len([]rune(candidateText))

	if inputLen == 0 && candidateLen == 0 {
		return 100
	}

	minLen, maxLen := inputLen, candidateLen
	if minLen > maxLen {
		minLen, maxLen = maxLen, minLen
	}

	// Prune: the pair cannot reach the near-duplicate band, skip the
	// O(n*m) comparison entirely. This is a documented approximation.
	if float64(minLen)/float64(maxLen) < r.LengthRatioFloor {
		return 0
	}

	distance := levenshtein(inputText, candidateText)
	sim := int(math.Round((1 - float64(distance)/float64(maxLen)) * 100))

	if sim < 0 {
		sim = 0
	}
	if sim > 100 {
		sim = 100
	}
	return sim
}
