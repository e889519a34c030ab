package sqlite

const schema = `
-- Test cases table (candidate corpus)
CREATE TABLE IF NOT EXISTS test_cases (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    title TEXT NOT NULL CHECK(length(title) <= 500),
    description TEXT NOT NULL DEFAULT '',
    steps TEXT NOT NULL DEFAULT '',
    expected_result TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_test_cases_project ON test_cases(project_id);

-- Scripts table (candidate corpus)
CREATE TABLE IF NOT EXISTS scripts (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    name TEXT NOT NULL,
    path TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scripts_project ON scripts(project_id);

-- Generation sessions table
-- project_id is nullable: sessions created without a project scope have no
-- corpus to compare against
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    project_id TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS session_files (
    session_id TEXT NOT NULL,
    path TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (session_id, path),
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

-- Duplicate checks table (audit trail)
-- Append-only: no code path updates or deletes rows here
CREATE TABLE IF NOT EXISTS duplicate_checks (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    source_type TEXT NOT NULL CHECK(source_type IN ('test_case', 'script')),
    source_id TEXT,
    is_duplicate INTEGER NOT NULL DEFAULT 0,
    confidence INTEGER NOT NULL CHECK(confidence >= 0 AND confidence <= 100),
    match_type TEXT NOT NULL CHECK(match_type IN ('exact', 'near', 'semantic', 'none')),
    similar_items TEXT NOT NULL DEFAULT '[]',
    checked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_duplicate_checks_project ON duplicate_checks(project_id);
CREATE INDEX IF NOT EXISTS idx_duplicate_checks_checked_at ON duplicate_checks(checked_at);
`
