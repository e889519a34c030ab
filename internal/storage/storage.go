// Package storage defines the persistence boundary of the duplicate
// detection engine: read-only candidate projections, generation session
// lookup, and the append-only audit trail of checks.
package storage

import (
	"context"

	"github.com/testforge/dupcheck/internal/storage/sqlite"
	"github.com/testforge/dupcheck/internal/types"
)

// Storage defines the interface for engine storage backends.
//
// Audit records are write-once: the interface deliberately exposes no
// update or delete operation for checks. Lookups that fail to resolve an
// id return types.ErrNotFound.
type Storage interface {
	// Candidate corpus - project-scoped, read-only projections.
	// excludeID (when non-empty) removes the item being re-checked so an
	// edit never matches itself. limit bounds the scan (<=0 means the
	// backend default).
	ListTestCaseCandidates(ctx context.Context, projectID, excludeID string, limit int) ([]types.Candidate, error)
	ListScriptCandidates(ctx context.Context, projectID, excludeID string, limit int) ([]types.Candidate, error)

	// Sessions - multi-file generation session lookup.
	GetSession(ctx context.Context, sessionID string) (*types.GenerationSession, error)

	// Audit trail - create-once, read-many.
	RecordCheck(ctx context.Context, check *types.DuplicateCheck) error
	GetCheck(ctx context.Context, id string) (*types.DuplicateCheck, error)
	ListChecksByProject(ctx context.Context, projectID string, limit int) ([]*types.DuplicateCheck, error)

	// Corpus seeding - used by the platform's sync job and the CLI.
	PutTestCase(ctx context.Context, tc *types.TestCase) error
	PutScript(ctx context.Context, script *types.Script) error
	PutSession(ctx context.Context, session *types.GenerationSession) error

	// Lifecycle
	Close() error
}

// Config holds database configuration
type Config struct {
	// Path is the SQLite database file path
	// Default: ".dupcheck/dupcheck.db"
	// Special value ":memory:" creates an in-memory database (useful for tests)
	Path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Path: ".dupcheck/dupcheck.db",
	}
}

// NewStorage creates a new SQLite storage backend.
// Server deployments construct the postgres subpackage backend directly.
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = ".dupcheck/dupcheck.db"
	}
	return sqlite.New(cfg.Path)
}
