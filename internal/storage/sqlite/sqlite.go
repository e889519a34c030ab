// Package sqlite implements the engine storage interface on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/testforge/dupcheck/internal/types"
)

// defaultListLimit bounds candidate and audit listings when the caller
// passes limit <= 0.
const defaultListLimit = 500

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// New creates a new SQLite storage backend
func New(path string) (*SQLiteStorage, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// ListTestCaseCandidates returns the project's test cases projected into
// comparison candidates. RawContent carries the fields in canonical order
// (title, description, steps, expected result) joined by single spaces.
func (s *SQLiteStorage) ListTestCaseCandidates(ctx context.Context, projectID, excludeID string, limit int) ([]types.Candidate, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, steps, expected_result
		FROM test_cases
		WHERE project_id = ? AND id != ?
		ORDER BY created_at DESC
		LIMIT ?
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
func (s *SQLiteStorage) ListScriptCandidates(ctx context.Context, projectID, excludeID string, limit int) ([]types.Candidate, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, path, content
		FROM scripts
		WHERE project_id = ? AND id != ?
		ORDER BY created_at DESC
		LIMIT ?
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
func (s *SQLiteStorage) GetSession(ctx context.Context, sessionID string) (*types.GenerationSession, error) {
	var session types.GenerationSession
	var projectID sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, created_at FROM sessions WHERE id = ?
	`, sessionID).Scan(&session.ID, &projectID, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: %w", sessionID, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if projectID.Valid {
		session.ProjectID = &projectID.String
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, content FROM session_files
		WHERE session_id = ?
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

// RecordCheck appends one immutable audit record. A single INSERT: there is
// no read-modify-write race to coordinate.
func (s *SQLiteStorage) RecordCheck(ctx context.Context, check *types.DuplicateCheck) error {
	if err := check.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if check.CheckedAt.IsZero() {
		check.CheckedAt = time.Now()
	}

	var sourceID sql.NullString
	if check.SourceID != "" {
		sourceID = sql.NullString{String: check.SourceID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO duplicate_checks (
			id, project_id, source_type, source_id,
			is_duplicate, confidence, match_type, similar_items, checked_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
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
func (s *SQLiteStorage) GetCheck(ctx context.Context, id string) (*types.DuplicateCheck, error) {
	var check types.DuplicateCheck
	var sourceID sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, source_type, source_id,
		       is_duplicate, confidence, match_type, similar_items, checked_at
		FROM duplicate_checks
		WHERE id = ?
	`, id).Scan(
		&check.ID, &check.ProjectID, &check.SourceType, &sourceID,
		&check.IsDuplicate, &check.Confidence, &check.MatchType,
		&check.SimilarItems, &check.CheckedAt,
	)
	if err == sql.ErrNoRows {
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
func (s *SQLiteStorage) ListChecksByProject(ctx context.Context, projectID string, limit int) ([]*types.DuplicateCheck, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, source_type, source_id,
		       is_duplicate, confidence, match_type, similar_items, checked_at
		FROM duplicate_checks
		WHERE project_id = ?
		ORDER BY checked_at DESC, id DESC
		LIMIT ?
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
func (s *SQLiteStorage) PutTestCase(ctx context.Context, tc *types.TestCase) error {
	if tc.ID == "" || tc.ProjectID == "" {
		return fmt.Errorf("test case id and project_id are required")
	}
	if tc.CreatedAt.IsZero() {
		tc.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO test_cases (id, project_id, title, description, steps, expected_result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			steps = excluded.steps,
			expected_result = excluded.expected_result
	`, tc.ID, tc.ProjectID, tc.Title, tc.Description, tc.Steps, tc.ExpectedResult, tc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to put test case: %w", err)
	}
	return nil
}

// PutScript upserts a script into the candidate corpus
func (s *SQLiteStorage) PutScript(ctx context.Context, script *types.Script) error {
	if script.ID == "" || script.ProjectID == "" {
		return fmt.Errorf("script id and project_id are required")
	}
	if script.CreatedAt.IsZero() {
		script.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scripts (id, project_id, name, path, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			path = excluded.path,
			content = excluded.content
	`, script.ID, script.ProjectID, script.Name, script.Path, script.Content, script.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to put script: %w", err)
	}
	return nil
}

// PutSession stores a generation session and its files
func (s *SQLiteStorage) PutSession(ctx context.Context, session *types.GenerationSession) error {
	if session.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var projectID sql.NullString
	if session.ProjectID != nil {
		projectID = sql.NullString{String: *session.ProjectID, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, project_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET project_id = excluded.project_id
	`, session.ID, projectID, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to put session: %w", err)
	}

	for i, f := range session.Files {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO session_files (session_id, path, content, position)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(session_id, path) DO UPDATE SET
				content = excluded.content,
				position = excluded.position
		`, session.ID, f.Path, f.Content, i)
		if err != nil {
			return fmt.Errorf("failed to put session file %s: %w", f.Path, err)
		}
	}

	return tx.Commit()
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
