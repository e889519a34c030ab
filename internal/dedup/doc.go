// Package dedup provides duplicate and near-duplicate content detection
// for test cases and automation scripts.
//
// # Overview
//
// Before a test case or script is persisted (or surfaced as a generated
// artifact), the platform asks this engine whether semantically-equivalent
// content already exists in the project. The answer is graded, not binary:
// alongside the duplicate flag the engine reports a 0-100 confidence score
// and a match type, so callers can warn on borderline similarity without
// blocking a save.
//
// # Architecture
//
// Every check runs a two-tier pipeline:
//
//  1. Exact tier: the input is normalized (noise such as comments, field
//     ordering, and formatting is stripped) and fingerprinted with SHA-256.
//     A hash hit against any project candidate short-circuits the check
//     with confidence 100.
//  2. Approximate tier: absent a hash hit, candidates are ranked by
//     Levenshtein similarity. A length-ratio prune skips candidates that
//     cannot plausibly clear the near-duplicate threshold, keeping the
//     O(n*m) comparisons bounded.
//
// The classifier grades the outcome in strict priority order (exact, near,
// advisory, none) and every check is persisted as one immutable audit
// record whose id comes back in the result.
//
// # Match types
//
// The match_type enum reserves a "semantic" tier beyond exact/near for a
// future embedding-based comparison. Nothing produces it today; it is kept
// so stored records and API consumers need no migration when it lands.
//
// # Usage
//
// Basic check before saving a test case:
//
//	store, err := storage.NewStorage(ctx, storage.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	detector, err := dedup.NewDetector(store, dedup.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	result, err := detector.CheckTestCase(ctx, normalize.TestCaseInput{
//	    Title:          "Test user login",
//	    Description:    "Verify login works",
//	    Steps:          stepsJSON, // canonical serialized form
//	    ExpectedResult: "User is logged in",
//	}, projectID, "")
//	if err != nil {
//	    // Duplicate detection is advisory, not a gate: log and proceed
//	    // with the save rather than blocking it.
//	    log.Printf("duplicate check failed: %v", err)
//	}
//	if result != nil && result.Confidence >= 60 {
//	    // Attach result as a duplicateWarning on the response.
//	}
//
// Re-checking an item being edited passes its own id as excludeID so it
// never matches itself. Session checks aggregate all generated files of a
// generation session into one verdict and one audit record.
//
// # Error handling
//
// ErrInvalidInput is returned for empty content or a missing project id;
// types.ErrNotFound for unresolvable session or check ids. Storage
// failures propagate unchanged - the engine never reports a failed write
// as "no duplicate found". On context cancellation the scan aborts without
// persisting a partial audit record.
//
// # Concurrency
//
// A ContentDetector holds no mutable state and is safe for concurrent use.
// Within one check, per-candidate comparisons fan out across a bounded
// worker pool and are merged deterministically, so repeated checks of the
// same input yield identical results regardless of scheduling.
package dedup
