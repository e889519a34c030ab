// Package postgres implements the engine storage interface on PostgreSQL,
// for server deployments where the platform database is shared.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/testforge/dupcheck/internal/types"
)

const defaultListLimit = 500

// PostgresStorage implements the Storage interface using PostgreSQL
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// Config holds PostgreSQL connection configuration
type Config struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	HealthCheck     time.Duration
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            5432,
		Database:        "dupcheck",
		User:            "dupcheck",
		SSLMode:         "prefer",
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 1 * time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		HealthCheck:     1 * time.Minute,
	}
}

// New creates a new PostgreSQL storage backend with connection pooling
func New(ctx context.Context, cfg *Config) (*PostgresStorage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheck

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresStorage{pool: pool}, nil
}

// ListTestCaseCandidates returns the project's test cases projected into
// comparison candidates, fields joined in canonical order.
func (s *PostgresStorage) ListTestCaseCandidates(ctx context.Context, projectID, excludeID string, limit int) ([]types.Candidate, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, title, description, steps, expected_result
		FROM test_cases
		WHERE project_id = $1 AND id != $2
		ORDER BY created_at DESC
		LIMIT $3
	`, projectID, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list test case candidates: %w", err)
	}
	defer rows.Close()

	var candidates []types.Candidate
	for rows.Next() {
		var id, title, description, steps, expected string
		if err := rows.Scan(&id, &title, &description, &steps, &expected); err != nil {
			return nil, fmt.Errorf("failed to scan test case: %w", err)
		}
		candidates = append(candidates, types.Candidate{
			ID:          id,
			DisplayName: title,
			RawContent:  strings.Join([]string{title, description, steps, expected}, " "),
		})
	}
	return candidates, rows.Err()
}

// ListScriptCandidates returns the project's scripts projected into
// comparison candidates.
func (s *PostgresStorage) ListScriptCandidates(ctx context.Context, projectID, excludeID string, limit int) ([]types.Candidate, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, path, content
		FROM scripts
		WHERE project_id = $1 AND id != $2
		ORDER BY created_at DESC
		LIMIT $3
	`, projectID, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list script candidates: %w", err)
	}
	defer rows.Close()

	var candidates []types.Candidate
	for rows.Next() {
		var c types.Candidate
		if err := rows.Scan(&c.ID, &c.DisplayName, &c.Path, &c.RawContent); err != nil {
			return nil, fmt.Errorf("failed to scan script: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// GetSession retrieves a generation session with its files
func (s *PostgresStorage) GetSession(ctx context.Context, sessionID string) (*types.GenerationSession, error) {
	var session types.GenerationSession
	var projectID sql.NullString

	err := s.pool.QueryRow(ctx, `
		SELECT id, project_id, created_at FROM sessions WHERE id = $1
	`, sessionID).Scan(&session.ID, &projectID, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if projectID.Valid {
		session.ProjectID = &projectID.String
	}

	rows, err := s.pool.Query(ctx, `
		SELECT path, content FROM session_files
		WHERE session_id = $1
		ORDER BY position ASC, path ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f types.SessionFile
		if err := rows.Scan(&f.Path, &f.Content); err != nil {
			return nil, fmt.Errorf("failed to scan session file: %w", err)
		}
		session.Files = append(session.Files, f)
	}
	return &session, rows.Err()
}

// RecordCheck appends one immutable audit record
func (s *PostgresStorage) RecordCheck(ctx context.Context, check *types.DuplicateCheck) error {
	if err := check.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if check.CheckedAt.IsZero() {
		check.CheckedAt = time.Now()
	}

	var sourceID *string
	if check.SourceID != "" {
		sourceID = &check.SourceID
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO duplicate_checks (
			id, project_id, source_type, source_id,
			is_duplicate, confidence, match_type, similar_items, checked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		check.ID, check.ProjectID, check.SourceType, sourceID,
		check.IsDuplicate, check.Confidence, check.MatchType,
		check.SimilarItems, check.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert duplicate check: %w", err)
	}
	return nil
}

// GetCheck retrieves an audit record by id
func (s *PostgresStorage) GetCheck(ctx context.Context, id string) (*types.DuplicateCheck, error) {
	var check types.DuplicateCheck
	var sourceID sql.NullString

	err := s.pool.QueryRow(ctx, `
		SELECT id, project_id, source_type, source_id,
		       is_duplicate, confidence, match_type, similar_items, checked_at
		FROM duplicate_checks
		WHERE id = $1
	`, id).Scan(
		&check.ID, &check.ProjectID, &check.SourceType, &sourceID,
		&check.IsDuplicate, &check.Confidence, &check.MatchType,
		&check.SimilarItems, &check.CheckedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check: %w", err)
	}

	if sourceID.Valid {
		check.SourceID = sourceID.String
	}
	return &check, nil
}

// ListChecksByProject returns a project's audit records, most recent first
func (s *PostgresStorage) ListChecksByProject(ctx context.Context, projectID string, limit int) ([]*types.DuplicateCheck, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, source_type, source_id,
		       is_duplicate, confidence, match_type, similar_items, checked_at
		FROM duplicate_checks
		WHERE project_id = $1
		ORDER BY checked_at DESC, id DESC
		LIMIT $2
	`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	var checks []*types.DuplicateCheck
	for rows.Next() {
		var check types.DuplicateCheck
		var sourceID sql.NullString
		err := rows.Scan(
			&check.ID, &check.ProjectID, &check.SourceType, &sourceID,
			&check.IsDuplicate, &check.Confidence, &check.MatchType,
			&check.SimilarItems, &check.CheckedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		if sourceID.Valid {
			check.SourceID = sourceID.String
		}
		checks = append(checks, &check)
	}
	return checks, rows.Err()
}

// PutTestCase upserts a test case into the candidate corpus
func (s *PostgresStorage) PutTestCase(ctx context.Context, tc *types.TestCase) error {
	if tc.ID == "" || tc.ProjectID == "" {
		return fmt.Errorf("test case id and project_id are required")
	}
	if tc.CreatedAt.IsZero() {
		tc.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO test_cases (id, project_id, title, description, steps, expected_result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			steps = EXCLUDED.steps,
			expected_result = EXCLUDED.expected_result
	`, tc.ID, tc.ProjectID, tc.Title, tc.Description, tc.Steps, tc.ExpectedResult, tc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to put test case: %w", err)
	}
	return nil
}

// PutScript upserts a script into the candidate corpus
func (s *PostgresStorage) PutScript(ctx context.Context, script *types.Script) error {
	if script.ID == "" || script.ProjectID == "" {
		return fmt.Errorf("script id and project_id are required")
	}
	if script.CreatedAt.IsZero() {
		script.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO scripts (id, project_id, name, path, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			path = EXCLUDED.path,
			content = EXCLUDED.content
	`, script.ID, script.ProjectID, script.Name, script.Path, script.Content, script.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to put script: %w", err)
	}
	return nil
}

// PutSession stores a generation session and its files
func (s *PostgresStorage) PutSession(ctx context.Context, session *types.GenerationSession) error {
	if session.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var projectID *string
	if session.ProjectID != nil {
		projectID = session.ProjectID
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sessions (id, project_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET project_id = EXCLUDED.project_id
	`, session.ID, projectID, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to put session: %w", err)
	}

	for i, f := range session.Files {
		_, err = tx.Exec(ctx, `
			INSERT INTO session_files (session_id, path, content, position)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (session_id, path) DO UPDATE SET
				content = EXCLUDED.content,
				position = EXCLUDED.position
		`, session.ID, f.Path, f.Content, i)
		if err != nil {
			return fmt.Errorf("failed to put session file %s: %w", f.Path, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the connection pool
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}
