package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with dcma-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// _txlock=immediate makes write transactions take the write lock at
	// BEGIN, so under WAL a read-then-insert transaction waits on the
	// busy timeout instead of failing at commit with a snapshot conflict.
	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
// The pool is pinned to a single connection so every query sees the same
// in-memory database.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. Both catalogs share the same
// row shape: logical key columns + version + JSON payload + embedding +
// lifecycle timestamps. The structured payload (summary, properties,
// policies, dependencies / content, examples) lives in the payload
// column; key columns and version stay relational so the store can
// enforce uniqueness and resolve "latest" in SQL.
const schema = `
CREATE TABLE IF NOT EXISTS domain_documents (
    identifier TEXT PRIMARY KEY,
    project TEXT NOT NULL,
    service TEXT NOT NULL,
    domain TEXT NOT NULL,
    version INTEGER NOT NULL,
    payload TEXT NOT NULL DEFAULT '{}',
    embedding TEXT,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
    deleted_at DATETIME,
    UNIQUE(project, service, domain, version)
);

CREATE INDEX IF NOT EXISTS idx_domain_documents_key ON domain_documents(project, service, domain);
CREATE INDEX IF NOT EXISTS idx_domain_documents_project ON domain_documents(project);
CREATE INDEX IF NOT EXISTS idx_domain_documents_deleted ON domain_documents(deleted_at);

CREATE TABLE IF NOT EXISTS project_conventions (
    identifier TEXT PRIMARY KEY,
    project TEXT NOT NULL,
    category TEXT NOT NULL,
    title TEXT NOT NULL,
    version INTEGER NOT NULL,
    payload TEXT NOT NULL DEFAULT '{}',
    embedding TEXT,
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
    deleted_at DATETIME,
    UNIQUE(project, category, title, version)
);

CREATE INDEX IF NOT EXISTS idx_project_conventions_key ON project_conventions(project, category, title);
CREATE INDEX IF NOT EXISTS idx_project_conventions_project ON project_conventions(project);
CREATE INDEX IF NOT EXISTS idx_project_conventions_deleted ON project_conventions(deleted_at);
`
