package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/testforge/dupcheck/internal/classify"
	"github.com/testforge/dupcheck/internal/normalize"
	"github.com/testforge/dupcheck/internal/similarity"
	"github.com/testforge/dupcheck/internal/storage"
	"github.com/testforge/dupcheck/internal/types"
)

// Detector defines the interface for duplicate content detection.
//
// Every check runs the same two-tier pipeline: normalize the input,
// fingerprint it for an O(1) exact-match scan, and only when no hash hit
// exists fall back to approximate similarity ranking. The graded verdict
// and ranked neighbors are persisted as one immutable audit record whose id
// is returned in DuplicateResult.CheckID.
type Detector interface {
	// CheckTestCase checks a test case (supplied in canonical field form)
	// against the project's stored test cases. excludeID, when non-empty,
	// removes the item being re-edited from the corpus so it never matches
	// itself.
	CheckTestCase(ctx context.Context, input normalize.TestCaseInput, projectID, excludeID string) (*types.DuplicateResult, error)

	// CheckScript checks automation script source against the project's
	// stored scripts. Comments and formatting do not affect the outcome.
	CheckScript(ctx context.Context, code, projectID, excludeID string) (*types.DuplicateResult, error)

	// CheckSession resolves a multi-file generation session and checks
	// every generated file against the session's project, aggregating into
	// a single result and a single audit record. A session without a
	// project scope short-circuits: no corpus, no audit write.
	CheckSession(ctx context.Context, sessionID string) (*types.DuplicateResult, error)

	// GetCheck retrieves a prior audit record by id.
	GetCheck(ctx context.Context, checkID string) (*types.DuplicateCheck, error)

	// ListChecks retrieves a project's audit records, most recent first.
	ListChecks(ctx context.Context, projectID string, limit int) ([]*types.DuplicateCheck, error)
}

// ContentDetector implements Detector on a storage backend. It holds no
// mutable state beyond its configuration; one instance is safe for
// concurrent use and plain dependency injection suffices.
type ContentDetector struct {
	store  storage.Storage
	config Config
	ranker *similarity.Ranker
}

// NewDetector creates a duplicate detector over the given storage backend.
// Returns an error if the configuration is invalid.
func NewDetector(store storage.Storage, config Config) (*ContentDetector, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ranker := similarity.NewRanker()
	ranker.LengthRatioFloor = config.LengthRatioFloor
	ranker.MinSimilarity = config.MinSimilarity
	ranker.TopK = config.MaxSimilarItems
	if config.MaxWorkers > 0 {
		ranker.MaxWorkers = config.MaxWorkers
	}

	return &ContentDetector{
		store:  store,
		config: config,
		ranker: ranker,
	}, nil
}

// CheckTestCase checks a test case against the project corpus
func (d *ContentDetector) CheckTestCase(ctx context.Context, input normalize.TestCaseInput, projectID, excludeID string) (*types.DuplicateResult, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required: %w", ErrInvalidInput)
	}
	normalized := normalize.TestCase(input)
	if normalized.CanonicalText == "" {
		return nil, fmt.Errorf("test case content is empty: %w", ErrInvalidInput)
	}

	candidates, err := d.store.ListTestCaseCandidates(ctx, projectID, excludeID, d.config.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	verdict, items, err := d.runPipeline(ctx, normalized, candidates, normalize.Text)
	if err != nil {
		return nil, err
	}

	return d.record(ctx, projectID, types.SourceTestCase, excludeID, verdict, items)
}

// CheckScript checks script source against the project corpus
func (d *ContentDetector) CheckScript(ctx context.Context, code, projectID, excludeID string) (*types.DuplicateResult, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id is required: %w", ErrInvalidInput)
	}
	if code == "" {
		return nil, fmt.Errorf("script code is empty: %w", ErrInvalidInput)
	}

	verdict, items, err := d.checkScriptContent(ctx, code, projectID, excludeID)
	if err != nil {
		return nil, err
	}

	return d.record(ctx, projectID, types.SourceScript, excludeID, verdict, items)
}

// CheckSession checks every file of a generation session and aggregates.
// The aggregate persists as one audit record (sourceType script, sourceID =
// session id); per-file outcomes are not individually recorded.
func (d *ContentDetector) CheckSession(ctx context.Context, sessionID string) (*types.DuplicateResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required: %w", ErrInvalidInput)
	}

	session, err := d.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.ProjectID == nil {
		// No project scope means no corpus to compare against. Nothing is
		// persisted for this short-circuit.
		return &types.DuplicateResult{
			IsDuplicate:    false,
			Confidence:     0,
			MatchType:      types.MatchNone,
			SimilarItems:   []types.SimilarityResult{},
			Recommendation: "Session has no project scope - no corpus to compare against",
		}, nil
	}
	projectID := *session.ProjectID

	aggregate := classify.Verdict{
		MatchType:      types.MatchNone,
		Recommendation: "No similar items found",
	}
	var allItems []types.SimilarityResult
	duplicateFiles := 0

	for _, file := range session.Files {
		if file.Content == "" {
			continue
		}
		verdict, items, err := d.checkScriptContent(ctx, file.Content, projectID, "")
		if err != nil {
			return nil, fmt.Errorf("failed to check session file %s: %w", file.Path, err)
		}

		if verdict.IsDuplicate {
			duplicateFiles++
		}
		if verdict.Confidence > aggregate.Confidence || strongerMatch(verdict.MatchType, aggregate.MatchType) {
			aggregate = verdict
		}
		allItems = append(allItems, items...)
	}

	// A session is flagged duplicate if any of its files is.
	if duplicateFiles > 0 {
		aggregate.IsDuplicate = true
		aggregate.Recommendation = fmt.Sprintf(
			"%d of %d generated files duplicate existing scripts - review before saving",
			duplicateFiles, len(session.Files))
	}

	allItems = mergeRanked(allItems, d.config.MaxSimilarItems)

	return d.record(ctx, projectID, types.SourceScript, sessionID, aggregate, allItems)
}

// GetCheck retrieves a prior audit record by id
func (d *ContentDetector) GetCheck(ctx context.Context, checkID string) (*types.DuplicateCheck, error) {
	return d.store.GetCheck(ctx, checkID)
}

// ListChecks retrieves a project's audit records, most recent first
func (d *ContentDetector) ListChecks(ctx context.Context, projectID string, limit int) ([]*types.DuplicateCheck, error) {
	return d.store.ListChecksByProject(ctx, projectID, limit)
}

// checkScriptContent runs the two-tier pipeline for script content without
// recording, so session checks can aggregate before persisting once.
func (d *ContentDetector) checkScriptContent(ctx context.Context, code, projectID, excludeID string) (classify.Verdict, []types.SimilarityResult, error) {
	normalized := normalize.Script(code)

	candidates, err := d.store.ListScriptCandidates(ctx, projectID, excludeID, d.config.MaxCandidates)
	if err != nil {
		return classify.Verdict{}, nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	return d.runPipeline(ctx, normalized, candidates, func(raw string) types.NormalizedContent {
		return normalize.Script(raw)
	})
}

// runPipeline executes tier 1 (fingerprint scan) and, absent an exact hit,
// tier 2 (similarity ranking), then classifies. normalizeCandidate maps a
// candidate's raw content to its canonical form per source kind.
func (d *ContentDetector) runPipeline(
	ctx context.Context,
	input types.NormalizedContent,
	candidates []types.Candidate,
	normalizeCandidate func(string) types.NormalizedContent,
) (classify.Verdict, []types.SimilarityResult, error) {
	thresholds := classify.Thresholds{Near: d.config.NearThreshold, Review: d.config.ReviewThreshold}

	// Tier 1: exact-duplicate scan on content hashes.
	rankCandidates := make([]similarity.RankCandidate, 0, len(candidates))
	for i := range candidates {
		nc := normalizeCandidate(candidates[i].RawContent)
		if nc.ContentHash == input.ContentHash {
			hit := candidates[i]
			verdict := classify.Classify(thresholds, &hit, nil)
			items := []types.SimilarityResult{{Candidate: hit, Similarity: 100}}
			return verdict, items, nil
		}
		rankCandidates = append(rankCandidates, similarity.RankCandidate{
			Candidate:     candidates[i],
			CanonicalText: nc.CanonicalText,
		})
	}

	// Tier 2: approximate similarity ranking.
	ranked, err := d.ranker.Rank(ctx, input.CanonicalText, rankCandidates)
	if err != nil {
		// Canceled or deadline exceeded: no audit record is persisted for
		// an aborted scan.
		return classify.Verdict{}, nil, err
	}

	return classify.Classify(thresholds, nil, ranked), ranked, nil
}

// record persists one immutable audit record and assembles the result.
func (d *ContentDetector) record(
	ctx context.Context,
	projectID string,
	sourceType types.SourceType,
	sourceID string,
	verdict classify.Verdict,
	items []types.SimilarityResult,
) (*types.DuplicateResult, error) {
	if items == nil {
		items = []types.SimilarityResult{}
	}

	serialized, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize similar items: %w", err)
	}

	check := &types.DuplicateCheck{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		SourceType:   sourceType,
		SourceID:     sourceID,
		IsDuplicate:  verdict.IsDuplicate,
		Confidence:   verdict.Confidence,
		MatchType:    verdict.MatchType,
		SimilarItems: string(serialized),
	}
	if err := d.store.RecordCheck(ctx, check); err != nil {
		// Storage failures propagate unchanged: a failed write is never
		// silently reported as "no duplicate found".
		return nil, err
	}

	return &types.DuplicateResult{
		IsDuplicate:    verdict.IsDuplicate,
		Confidence:     verdict.Confidence,
		MatchType:      verdict.MatchType,
		SimilarItems:   items,
		Recommendation: verdict.Recommendation,
		CheckID:        check.ID,
	}, nil
}

// strongerMatch reports whether a outranks b in the match hierarchy.
func strongerMatch(a, b types.MatchType) bool {
	rank := func(m types.MatchType) int {
		switch m {
		case types.MatchExact:
			return 3
		case types.MatchNear:
			return 2
		case types.MatchSemantic:
			return 1
		default:
			return 0
		}
	}
	return rank(a) > rank(b)
}

// mergeRanked sorts combined per-file rankings descending (ties broken by
// candidate id), drops duplicate candidates keeping their best score, and
// truncates to limit.
func mergeRanked(items []types.SimilarityResult, limit int) []types.SimilarityResult {
	best := make(map[string]types.SimilarityResult, len(items))
	for _, item := range items {
		if prev, ok := best[item.Candidate.ID]; !ok || item.Similarity > prev.Similarity {
			best[item.Candidate.ID] = item
		}
	}

	merged := make([]types.SimilarityResult, 0, len(best))
	for _, item := range best {
		merged = append(merged, item)
	}

	// Deterministic order regardless of map iteration.
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Similarity != merged[j].Similarity {
			return merged[i].Similarity > merged[j].Similarity
		}
		return merged[i].Candidate.ID < merged[j].Candidate.ID
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
