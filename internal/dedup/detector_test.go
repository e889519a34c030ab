package dedup

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testforge/dupcheck/internal/normalize"
	"github.com/testforge/dupcheck/internal/storage/sqlite"
	"github.com/testforge/dupcheck/internal/types"
)

func newTestDetector(t *testing.T) (*ContentDetector, *sqlite.SQLiteStorage) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	detector, err := NewDetector(store, DefaultConfig())
	require.NoError(t, err)
	return detector, store
}

func seedTestCase(t *testing.T, store *sqlite.SQLiteStorage, id, projectID, title, description, steps, expected string) {
	t.Helper()
	require.NoError(t, store.PutTestCase(context.Background(), &types.TestCase{
		ID:             id,
		ProjectID:      projectID,
		Title:          title,
		Description:    description,
		Steps:          steps,
		ExpectedResult: expected,
	}))
}

func seedScript(t *testing.T, store *sqlite.SQLiteStorage, id, projectID, name, content string) {
	t.Helper()
	require.NoError(t, store.PutScript(context.Background(), &types.Script{
		ID:        id,
		ProjectID: projectID,
		Name:      name,
		Path:      "generated/" + name,
		Content:   content,
	}))
}

func TestNewDetectorRejectsInvalidConfig(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	cfg := DefaultConfig()
	cfg.NearThreshold = 200
	_, err = NewDetector(store, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestCheckTestCaseEmptyCorpus(t *testing.T) {
	detector, _ := newTestDetector(t)

	result, err := detector.CheckTestCase(context.Background(),
		normalize.TestCaseInput{Title: "new test"}, "proj-1", "")
	require.NoError(t, err)

	assert.False(t, result.IsDuplicate)
	assert.Equal(t, 0, result.Confidence)
	assert.Equal(t, types.MatchNone, result.MatchType)
	assert.Empty(t, result.SimilarItems)
	assert.Equal(t, "No similar items found", result.Recommendation)
	assert.NotEmpty(t, result.CheckID)
}

func TestCheckTestCaseExactMatch(t *testing.T) {
	detector, store := newTestDetector(t)
	seedTestCase(t, store, "tc-1", "proj-1",
		"Test user login", "Verify login works", `["open","submit"]`, "logged in")

	// Extra whitespace in the input must not defeat the hash match.
	result, err := detector.CheckTestCase(context.Background(), normalize.TestCaseInput{
		Title:          "Test user  login",
		Description:    "Verify login works",
		Steps:          `["open","submit"]`,
		ExpectedResult: "logged in",
	}, "proj-1", "")
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	assert.Equal(t, 100, result.Confidence)
	assert.Equal(t, types.MatchExact, result.MatchType)
	require.Len(t, result.SimilarItems, 1)
	assert.Equal(t, "tc-1", result.SimilarItems[0].Candidate.ID)
	assert.Equal(t, 100, result.SimilarItems[0].Similarity)
	assert.Contains(t, result.Recommendation, "Exact match")
}

func TestCheckTestCaseNearDuplicate(t *testing.T) {
	detector, store := newTestDetector(t)
	seedTestCase(t, store, "tc-1", "proj-1",
		"verify user can log in with valid credentials", "", "", "")

	result, err := detector.CheckTestCase(context.Background(), normalize.TestCaseInput{
		Title: "verify user can log in with valid credential",
	}, "proj-1", "")
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	assert.Equal(t, types.MatchNear, result.MatchType)
	assert.GreaterOrEqual(t, result.Confidence, 85)
	assert.Less(t, result.Confidence, 100)
	require.NotEmpty(t, result.SimilarItems)
	assert.Equal(t, "tc-1", result.SimilarItems[0].Candidate.ID)
}

func TestCheckTestCaseParaphraseAdvisory(t *testing.T) {
	detector, store := newTestDetector(t)
	seedTestCase(t, store, "tc-1", "proj-1",
		"Test user login", "Verify login works", "", "")

	result, err := detector.CheckTestCase(context.Background(), normalize.TestCaseInput{
		Title:       "Test user login",
		Description: "Verify user can log in",
	}, "proj-1", "")
	require.NoError(t, err)

	// A paraphrase lands in the advisory band: flagged for review via
	// confidence without being auto-classified a duplicate.
	assert.False(t, result.IsDuplicate)
	assert.Equal(t, types.MatchNear, result.MatchType)
	assert.GreaterOrEqual(t, result.Confidence, 60)
	assert.Less(t, result.Confidence, 85)
}

func TestCheckTestCaseExcludeID(t *testing.T) {
	detector, store := newTestDetector(t)
	seedTestCase(t, store, "tc-1", "proj-1", "Test user login", "Verify login works", "", "")

	// Re-checking tc-1 while editing it: identical content, but the item
	// must never match itself.
	result, err := detector.CheckTestCase(context.Background(), normalize.TestCaseInput{
		Title:       "Test user login",
		Description: "Verify login works",
	}, "proj-1", "tc-1")
	require.NoError(t, err)
	assert.False(t, result.IsDuplicate)
	assert.Equal(t, types.MatchNone, result.MatchType)
}

func TestCheckTestCaseProjectScoping(t *testing.T) {
	detector, store := newTestDetector(t)
	seedTestCase(t, store, "tc-other", "proj-2", "Test user login", "Verify login works", "", "")

	result, err := detector.CheckTestCase(context.Background(), normalize.TestCaseInput{
		Title:       "Test user login",
		Description: "Verify login works",
	}, "proj-1", "")
	require.NoError(t, err)
	assert.False(t, result.IsDuplicate, "corpus is project-scoped")
}

func TestCheckTestCaseInvalidInput(t *testing.T) {
	detector, _ := newTestDetector(t)
	ctx := context.Background()

	_, err := detector.CheckTestCase(ctx, normalize.TestCaseInput{Title: "x"}, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput, "missing project id")

	_, err = detector.CheckTestCase(ctx, normalize.TestCaseInput{}, "proj-1", "")
	assert.ErrorIs(t, err, ErrInvalidInput, "empty content")
}

func TestCheckScriptIgnoresCommentsAndFormatting(t *testing.T) {
	detector, store := newTestDetector(t)
	seedScript(t, store, "sc-1", "proj-1", "login_test.py",
		"def test_login():\n    # arrange\n    user = make_user()\n    assert login(user)\n")

	result, err := detector.CheckScript(context.Background(),
		"def test_login(): user = make_user()  # different comment\nassert login(user)",
		"proj-1", "")
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	assert.Equal(t, types.MatchExact, result.MatchType)
	assert.Equal(t, 100, result.Confidence)
}

func TestCheckScriptInvalidInput(t *testing.T) {
	detector, _ := newTestDetector(t)

	_, err := detector.CheckScript(context.Background(), "", "proj-1", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = detector.CheckScript(context.Background(), "code", "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuditRecordPerCheck(t *testing.T) {
	detector, _ := newTestDetector(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := detector.CheckScript(ctx, "print('hello')", "proj-1", "")
		require.NoError(t, err)
	}

	checks, err := detector.ListChecks(ctx, "proj-1", 0)
	require.NoError(t, err)
	assert.Len(t, checks, 3, "exactly one audit write per facade call")
}

func TestAuditIdempotentRead(t *testing.T) {
	detector, store := newTestDetector(t)
	ctx := context.Background()
	seedTestCase(t, store, "tc-1", "proj-1", "Test user login", "Verify login works", "", "")

	result, err := detector.CheckTestCase(ctx, normalize.TestCaseInput{
		Title:       "Test user login",
		Description: "Verify login works",
	}, "proj-1", "")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		check, err := detector.GetCheck(ctx, result.CheckID)
		require.NoError(t, err)
		assert.Equal(t, result.IsDuplicate, check.IsDuplicate)
		assert.Equal(t, result.Confidence, check.Confidence)
		assert.Equal(t, result.MatchType, check.MatchType)
		assert.Equal(t, types.SourceTestCase, check.SourceType)

		var items []types.SimilarityResult
		require.NoError(t, json.Unmarshal([]byte(check.SimilarItems), &items))
		assert.Equal(t, result.SimilarItems, items)
	}
}

func TestGetCheckNotFound(t *testing.T) {
	detector, _ := newTestDetector(t)
	_, err := detector.GetCheck(context.Background(), "chk-missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCheckCanceledContextWritesNoRecord(t *testing.T) {
	detector, store := newTestDetector(t)
	seedTestCase(t, store, "tc-1", "proj-1", "some title", "some description", "", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := detector.CheckTestCase(ctx, normalize.TestCaseInput{Title: "some title"}, "proj-1", "")
	require.Error(t, err)

	checks, err := detector.ListChecks(context.Background(), "proj-1", 0)
	require.NoError(t, err)
	assert.Empty(t, checks, "no partial audit record on cancellation")
}

func TestCheckSessionNotFound(t *testing.T) {
	detector, _ := newTestDetector(t)
	_, err := detector.CheckSession(context.Background(), "sess-missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCheckSessionWithoutProjectScope(t *testing.T) {
	detector, store := newTestDetector(t)
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, &types.GenerationSession{
		ID:    "sess-1",
		Files: []types.SessionFile{{Path: "a.py", Content: "print('a')"}},
	}))

	result, err := detector.CheckSession(ctx, "sess-1")
	require.NoError(t, err)

	assert.False(t, result.IsDuplicate)
	assert.Equal(t, 0, result.Confidence)
	assert.Contains(t, result.Recommendation, "project scope")
	assert.Empty(t, result.CheckID, "short-circuit persists nothing")

	// No audit write happened for any project.
	checks, err := detector.ListChecks(ctx, "proj-1", 0)
	require.NoError(t, err)
	assert.Empty(t, checks)
}

func TestCheckSessionAggregates(t *testing.T) {
	detector, store := newTestDetector(t)
	ctx := context.Background()

	seedScript(t, store, "sc-1", "proj-1", "login_test.py",
		"def test_login():\n    assert login(make_user())\n")

	projectID := "proj-1"
	require.NoError(t, store.PutSession(ctx, &types.GenerationSession{
		ID:        "sess-1",
		ProjectID: &projectID,
		Files: []types.SessionFile{
			// Duplicates sc-1 up to comments.
			{Path: "login_test.py", Content: "# generated\ndef test_login(): assert login(make_user())"},
			{Path: "totally_new.py", Content: "def test_unrelated_checkout_flow(): assert checkout(cart_with_items())"},
		},
	}))

	result, err := detector.CheckSession(ctx, "sess-1")
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate, "session is duplicate if any file is")
	assert.Equal(t, types.MatchExact, result.MatchType)
	assert.Equal(t, 100, result.Confidence)
	assert.Contains(t, result.Recommendation, "1 of 2")
	assert.NotEmpty(t, result.CheckID)

	// One aggregated audit record, attributed to the session.
	checks, err := detector.ListChecks(ctx, "proj-1", 0)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, "sess-1", checks[0].SourceID)
	assert.Equal(t, types.SourceScript, checks[0].SourceType)
	assert.True(t, checks[0].IsDuplicate)
}

func TestCheckSessionAllUniqueFiles(t *testing.T) {
	detector, store := newTestDetector(t)
	ctx := context.Background()

	projectID := "proj-1"
	require.NoError(t, store.PutSession(ctx, &types.GenerationSession{
		ID:        "sess-1",
		ProjectID: &projectID,
		Files: []types.SessionFile{
			{Path: "a.py", Content: "def test_alpha(): assert alpha()"},
		},
	}))

	result, err := detector.CheckSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, result.IsDuplicate)
	assert.Equal(t, types.MatchNone, result.MatchType)

	checks, err := detector.ListChecks(ctx, "proj-1", 0)
	require.NoError(t, err)
	assert.Len(t, checks, 1, "a scoped session check still records once")
}
