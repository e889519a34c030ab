package types

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a check or session id does not resolve.
// Callers detect it with errors.Is.
var ErrNotFound = errors.New("not found")

// TestCase is a stored test case as the platform persists it.
// Steps holds the canonical serialized form of the step list.
type TestCase struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Steps          string    `json:"steps"`
	ExpectedResult string    `json:"expected_result"`
	CreatedAt      time.Time `json:"created_at"`
}

// Script is a stored automation script.
type Script struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
