package dedup

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for the duplicate detection engine
type Config struct {
	// NearThreshold is the minimum similarity (0-100) to classify content
	// as a near-duplicate. Inclusive on the high side: a score exactly at
	// the threshold is a duplicate.
	// Default: 85
	NearThreshold int `yaml:"near_threshold"`

	// ReviewThreshold is the minimum similarity (0-100) to flag content
	// for human review without auto-classifying it as a duplicate. It
	// matches the downstream agent's warning threshold.
	// Default: 60
	ReviewThreshold int `yaml:"review_threshold"`

	// MinSimilarity drops ranked results scoring below it so the output
	// stays meaningful.
	// Default: 30
	MinSimilarity int `yaml:"min_similarity"`

	// MaxSimilarItems caps the ranked list returned with a result.
	// Default: 5
	MaxSimilarItems int `yaml:"max_similar_items"`

	// LengthRatioFloor prunes candidate pairs whose min/max length ratio
	// falls below it before the full edit-distance computation.
	// Default: 0.5 (strings differing by more than 2x in length)
	LengthRatioFloor float64 `yaml:"length_ratio_floor"`

	// MaxCandidates bounds how many stored items one check scans.
	// Default: 500
	MaxCandidates int `yaml:"max_candidates"`

	// MaxWorkers bounds parallel per-candidate comparisons.
	// 0 means one worker per CPU core.
	MaxWorkers int `yaml:"max_workers"`
}

// DefaultConfig returns the default engine configuration
//
// These defaults are chosen to:
// - Require high similarity before auto-classifying a duplicate (85)
// - Surface advisory warnings early enough to be useful (60)
// - Keep per-check cost bounded (candidate cap, length prune)
func DefaultConfig() Config {
	return Config{
		NearThreshold:    85,
		ReviewThreshold:  60,
		MinSimilarity:    30,
		MaxSimilarItems:  5,
		LengthRatioFloor: 0.5,
		MaxCandidates:    500,
		MaxWorkers:       0,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.NearThreshold < 0 || c.NearThreshold > 100 {
		return fmt.Errorf("near_threshold must be between 0 and 100 (got %d)", c.NearThreshold)
	}
	if c.ReviewThreshold < 0 || c.ReviewThreshold > 100 {
		return fmt.Errorf("review_threshold must be between 0 and 100 (got %d)", c.ReviewThreshold)
	}
	if c.ReviewThreshold > c.NearThreshold {
		return fmt.Errorf("review_threshold (%d) cannot exceed near_threshold (%d)",
			c.ReviewThreshold, c.NearThreshold)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 100 {
		return fmt.Errorf("min_similarity must be between 0 and 100 (got %d)", c.MinSimilarity)
	}
	if c.MaxSimilarItems <= 0 {
		return fmt.Errorf("max_similar_items must be positive (got %d)", c.MaxSimilarItems)
	}
	if c.MaxSimilarItems > 100 {
		return fmt.Errorf("max_similar_items too large (got %d, max 100)", c.MaxSimilarItems)
	}
	if c.LengthRatioFloor < 0.0 || c.LengthRatioFloor > 1.0 {
		return fmt.Errorf("length_ratio_floor must be between 0.0 and 1.0 (got %.2f)", c.LengthRatioFloor)
	}
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("max_candidates must be positive (got %d)", c.MaxCandidates)
	}
	if c.MaxCandidates > 10000 {
		return fmt.Errorf("max_candidates too large (got %d, max 10000)", c.MaxCandidates)
	}
	if c.MaxWorkers < 0 {
		return fmt.Errorf("max_workers cannot be negative (got %d)", c.MaxWorkers)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Near: %d, Review: %d, MinSim: %d, TopK: %d, LengthFloor: %.2f, "+
			"MaxCandidates: %d, MaxWorkers: %d}",
		c.NearThreshold, c.ReviewThreshold, c.MinSimilarity, c.MaxSimilarItems,
		c.LengthRatioFloor, c.MaxCandidates, c.MaxWorkers,
	)
}

// ConfigFromEnv creates a Config from environment variables, falling back to defaults
//
// Environment variables:
//   - DUPCHECK_NEAR_THRESHOLD: Similarity (0-100) to classify as duplicate (default: 85)
//   - DUPCHECK_REVIEW_THRESHOLD: Similarity (0-100) to flag for review (default: 60)
//   - DUPCHECK_MIN_SIMILARITY: Floor below which results are dropped (default: 30)
//   - DUPCHECK_MAX_SIMILAR_ITEMS: Cap on the ranked list (default: 5)
//   - DUPCHECK_LENGTH_RATIO_FLOOR: Length-ratio prune floor (default: 0.5)
//   - DUPCHECK_MAX_CANDIDATES: Cap on candidates scanned per check (default: 500)
//   - DUPCHECK_MAX_WORKERS: Parallel comparison bound, 0 = CPU count (default: 0)
//
// Returns an error if any environment variable has an invalid value.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if err := parseEnvInt("DUPCHECK_NEAR_THRESHOLD", &cfg.NearThreshold); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("DUPCHECK_REVIEW_THRESHOLD", &cfg.ReviewThreshold); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("DUPCHECK_MIN_SIMILARITY", &cfg.MinSimilarity); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("DUPCHECK_MAX_SIMILAR_ITEMS", &cfg.MaxSimilarItems); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("DUPCHECK_LENGTH_RATIO_FLOOR", &cfg.LengthRatioFloor); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("DUPCHECK_MAX_CANDIDATES", &cfg.MaxCandidates); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("DUPCHECK_MAX_WORKERS", &cfg.MaxWorkers); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration from environment: %w", err)
	}

	return cfg, nil
}

// LoadConfigFile reads a YAML config file and overlays it on the defaults.
// Fields absent from the file keep their default values.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return cfg, nil
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvFloat parses a float64 from an environment variable
func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
