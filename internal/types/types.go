package types

import (
	"fmt"
	"time"
)

// Candidate is a read-only projection of a stored item that a new piece of
// content is compared against. Path is set for script-like candidates (the
// generated file path) and empty for test cases.
type Candidate struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Path        string `json:"path,omitempty"`
	RawContent  string `json:"raw_content"`
}

// NormalizedContent is the canonical comparable form of heterogeneous input.
// It is derived, never mutated; every check recomputes it from raw input.
type NormalizedContent struct {
	CanonicalText string `json:"canonical_text"`
	ContentHash   string `json:"content_hash"`
}

// SimilarityResult pairs a candidate with its similarity percentage (0-100)
// against the checked input. The score is symmetric: swapping input and
// candidate for the same pair yields the same value.
type SimilarityResult struct {
	Candidate  Candidate `json:"candidate"`
	Similarity int       `json:"similarity"`
}

// Validate checks if the similarity result has valid field values
func (r *SimilarityResult) Validate() error {
	if r.Candidate.ID == "" {
		return fmt.Errorf("candidate id is required")
	}
	if r.Similarity < 0 || r.Similarity > 100 {
		return fmt.Errorf("similarity must be between 0 and 100 (got %d)", r.Similarity)
	}
	return nil
}

// MatchType categorizes how a duplicate verdict was reached
//
// MatchSemantic is a reserved tier for a future embedding-based comparison;
// the classifier never produces it today, but stored records and API
// consumers treat it as a valid value.
type MatchType string

const (
	MatchExact    MatchType = "exact"    // Content hashes are equal
	MatchNear     MatchType = "near"     // Similarity at or above a threshold
	MatchSemantic MatchType = "semantic" // Reserved, never produced
	MatchNone     MatchType = "none"     // No candidate scored above the floor
)

// IsValid checks if the match type value is valid
func (m MatchType) IsValid() bool {
	switch m {
	case MatchExact, MatchNear, MatchSemantic, MatchNone:
		return true
	}
	return false
}

// SourceType identifies the kind of content a check was performed on
type SourceType string

const (
	SourceTestCase SourceType = "test_case"
	SourceScript   SourceType = "script"
)

// IsValid checks if the source type value is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTestCase, SourceScript:
		return true
	}
	return false
}

// DuplicateResult is what a duplicate check returns to the caller.
//
// Confidence is distinct from IsDuplicate: a check can report high
// confidence without flagging a duplicate (the advisory band between the
// review and near thresholds), and callers key warnings off Confidence
// independently of the binary flag.
type DuplicateResult struct {
	IsDuplicate    bool               `json:"is_duplicate"`
	Confidence     int                `json:"confidence"`
	MatchType      MatchType          `json:"match_type"`
	SimilarItems   []SimilarityResult `json:"similar_items"`
	Recommendation string             `json:"recommendation"`
	CheckID        string             `json:"check_id,omitempty"`
}

// Validate checks if the duplicate result has valid field values
func (d *DuplicateResult) Validate() error {
	if d.Confidence < 0 || d.Confidence > 100 {
		return fmt.Errorf("confidence must be between 0 and 100 (got %d)", d.Confidence)
	}
	if !d.MatchType.IsValid() {
		return fmt.Errorf("invalid match type: %s", d.MatchType)
	}
	if d.IsDuplicate && d.MatchType == MatchNone {
		return fmt.Errorf("match_type cannot be none when is_duplicate is true")
	}
	if d.MatchType == MatchExact && d.Confidence != 100 {
		return fmt.Errorf("exact matches must have confidence 100 (got %d)", d.Confidence)
	}
	for i := range d.SimilarItems {
		if err := d.SimilarItems[i].Validate(); err != nil {
			return fmt.Errorf("similar_items[%d]: %w", i, err)
		}
	}
	return nil
}

// DuplicateCheck is the immutable audit record of a single check.
// Created exactly once per facade invocation, never updated or deleted.
// SourceID references the entity the check was performed on and is empty
// for ad-hoc pre-save checks.
type DuplicateCheck struct {
	ID           string     `json:"id"`
	ProjectID    string     `json:"project_id"`
	SourceType   SourceType `json:"source_type"`
	SourceID     string     `json:"source_id,omitempty"`
	IsDuplicate  bool       `json:"is_duplicate"`
	Confidence   int        `json:"confidence"`
	MatchType    MatchType  `json:"match_type"`
	SimilarItems string     `json:"similar_items"` // JSON-serialized []SimilarityResult
	CheckedAt    time.Time  `json:"checked_at"`
}

// Validate checks if the audit record has valid field values
func (c *DuplicateCheck) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("id is required")
	}
	if c.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if !c.SourceType.IsValid() {
		return fmt.Errorf("invalid source type: %s", c.SourceType)
	}
	if c.Confidence < 0 || c.Confidence > 100 {
		return fmt.Errorf("confidence must be between 0 and 100 (got %d)", c.Confidence)
	}
	if !c.MatchType.IsValid() {
		return fmt.Errorf("invalid match type: %s", c.MatchType)
	}
	return nil
}

// SessionFile is one generated file inside a generation session
type SessionFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// GenerationSession is a read-only projection of a multi-file generation
// session. ProjectID is nil when the session was created without a project
// scope, in which case there is no corpus to compare against.
type GenerationSession struct {
	ID        string        `json:"id"`
	ProjectID *string       `json:"project_id,omitempty"`
	Files     []SessionFile `json:"files"`
	CreatedAt time.Time     `json:"created_at"`
}
