// Package catalog implements the versioned entity store shared by the
// domain document and project convention catalogs. Records are
// append-only: every save creates a new row at the next version number,
// and deletion is a soft delete that stamps deleted_at on every live row
// of a logical key. The store is generic over the payload shape; each
// catalog supplies its own table, key columns and payload type.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ttutta/dcma/internal/db"
)

// maxSaveAttempts bounds the retry loop for the read-max-then-insert
// version race. Two concurrent saves on the same key can pick the same
// next version; the loser hits the (key, version) uniqueness constraint
// or a busy/snapshot conflict and retries with a fresh read.
const maxSaveAttempts = 3

// Key is the logical identity of a record, independent of version.
// Its elements correspond positionally to the store's key columns.
type Key []string

func (k Key) String() string { return strings.Join(k, "/") }

// Record is one stored version of an entity.
type Record[P any] struct {
	Identifier string
	Key        Key
	Version    int
	Payload    P
	Embedding  []float32
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// Deleted reports whether this row has been soft-deleted.
func (r *Record[P]) Deleted() bool { return r.DeletedAt != nil }

// Store persists versioned records of payload type P in a single table.
// The first key column is always the project.
type Store[P any] struct {
	db       *db.DB
	table    string
	keyCols  []string
	keyWhere string // "project = ? AND service = ? AND domain = ?"
	cols     string // full select column list
}

// NewStore creates a store over the given table and key columns.
func NewStore[P any](database *db.DB, table string, keyCols ...string) *Store[P] {
	conds := make([]string, len(keyCols))
	for i, c := range keyCols {
		conds[i] = c + " = ?"
	}
	return &Store[P]{
		db:       database,
		table:    table,
		keyCols:  keyCols,
		keyWhere: strings.Join(conds, " AND "),
		cols: "identifier, " + strings.Join(keyCols, ", ") +
			", version, payload, embedding, created_at, updated_at, deleted_at",
	}
}

// Save appends a new version of the record identified by key. The first
// save of a key creates version 1; later saves create max(version)+1.
// Existing rows are never mutated. Version numbers continue across
// soft-deleted rows so recreating a deleted key never collides with the
// uniqueness constraint.
func (s *Store[P]) Save(ctx context.Context, key Key, payload P) (*Record[P], error) {
	if len(key) != len(s.keyCols) {
		return nil, fmt.Errorf("saving into %s: key has %d parts, want %d", s.table, len(key), len(s.keyCols))
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		rec, err := s.insertNextVersion(ctx, key, payload, body)
		if err == nil {
			return rec, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("saving into %s: version conflict persisted after %d attempts: %w", s.table, maxSaveAttempts, lastErr)
}

func (s *Store[P]) insertNextVersion(ctx context.Context, key Key, payload P, body []byte) (*Record[P], error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var maxVersion int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM `+s.table+` WHERE `+s.keyWhere,
		keyArgs(key)...,
	).Scan(&maxVersion)
	if err != nil {
		return nil, fmt.Errorf("reading current version: %w", err)
	}

	now := time.Now().UTC()
	rec := &Record[P]{
		Identifier: uuid.New().String(),
		Key:        append(Key(nil), key...),
		Version:    maxVersion + 1,
		Payload:    payload,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	args := make([]any, 0, len(key)+6)
	args = append(args, rec.Identifier)
	args = append(args, keyArgs(key)...)
	args = append(args, rec.Version, string(body), rec.CreatedAt, rec.UpdatedAt)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO `+s.table+` (identifier, `+strings.Join(s.keyCols, ", ")+`, version, payload, created_at, updated_at)
		 VALUES (?`+strings.Repeat(", ?", len(key)+4)+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting version %d: %w", rec.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing save: %w", err)
	}
	return rec, nil
}

// FindLatest returns the highest non-deleted version for the key, or
// (nil, nil) when no live row exists.
func (s *Store[P]) FindLatest(ctx context.Context, key Key) (*Record[P], error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+s.cols+` FROM `+s.table+`
		 WHERE `+s.keyWhere+` AND deleted_at IS NULL
		 ORDER BY version DESC LIMIT 1`,
		keyArgs(key)...,
	)
	return s.scanOne(row)
}

// FindVersion returns a specific non-deleted version, or (nil, nil).
func (s *Store[P]) FindVersion(ctx context.Context, key Key, version int) (*Record[P], error) {
	args := append(keyArgs(key), version)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+s.cols+` FROM `+s.table+`
		 WHERE `+s.keyWhere+` AND version = ? AND deleted_at IS NULL`,
		args...,
	)
	return s.scanOne(row)
}

// FindByIdentifier returns the row with the given identifier regardless
// of deletion state, so version history stays inspectable. Absent rows
// yield (nil, nil).
func (s *Store[P]) FindByIdentifier(ctx context.Context, identifier string) (*Record[P], error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+s.cols+` FROM `+s.table+` WHERE identifier = ?`, identifier)
	return s.scanOne(row)
}

// AllVersions returns every stored version of the key, deleted or not,
// ordered by version ascending.
func (s *Store[P]) AllVersions(ctx context.Context, key Key) ([]*Record[P], error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+s.cols+` FROM `+s.table+`
		 WHERE `+s.keyWhere+` ORDER BY version ASC`,
		keyArgs(key)...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	return s.scanAll(rows)
}

// LatestForProject returns the latest non-deleted version of every
// distinct logical key under the project.
func (s *Store[P]) LatestForProject(ctx context.Context, project string) ([]*Record[P], error) {
	corr := make([]string, len(s.keyCols))
	for i, c := range s.keyCols {
		corr[i] = "v." + c + " = d." + c
	}
	aliased := "d." + strings.ReplaceAll(s.cols, ", ", ", d.")

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+aliased+` FROM `+s.table+` d
		 WHERE d.`+s.keyCols[0]+` = ? AND d.deleted_at IS NULL
		   AND d.version = (
		     SELECT MAX(v.version) FROM `+s.table+` v
		     WHERE `+strings.Join(corr, " AND ")+` AND v.deleted_at IS NULL)
		 ORDER BY d.`+strings.Join(s.keyCols, ", d."),
		project,
	)
	if err != nil {
		return nil, fmt.Errorf("querying latest for project: %w", err)
	}
	return s.scanAll(rows)
}

// Projects returns the distinct project names that have at least one
// non-deleted row.
func (s *Store[P]) Projects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT `+s.keyCols[0]+` FROM `+s.table+`
		 WHERE deleted_at IS NULL ORDER BY `+s.keyCols[0])
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// SoftDelete stamps deleted_at on every non-deleted row of the key and
// returns the number of rows affected. Deleting an already-deleted or
// unknown key affects 0 rows and is not an error.
func (s *Store[P]) SoftDelete(ctx context.Context, key Key) (int64, error) {
	now := time.Now().UTC()
	args := append([]any{now, now}, keyArgs(key)...)
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+s.table+` SET deleted_at = ?, updated_at = ?
		 WHERE `+s.keyWhere+` AND deleted_at IS NULL`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("soft-deleting %s: %w", key, err)
	}
	return res.RowsAffected()
}

// UpdateEmbedding stores the vector for a single row. It touches only
// the embedding column and updated_at; it never creates a new version.
// Returns ErrNotFound when the identifier does not exist.
func (s *Store[P]) UpdateEmbedding(ctx context.Context, identifier string, vector []float32) error {
	body, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("encoding embedding: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+s.table+` SET embedding = ?, updated_at = ? WHERE identifier = ?`,
		string(body), time.Now().UTC(), identifier,
	)
	if err != nil {
		return fmt.Errorf("updating embedding: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("updating embedding for %s: %w", identifier, ErrNotFound)
	}
	return nil
}

// MissingEmbeddings returns all non-deleted rows without an embedding,
// for the backfill batch.
func (s *Store[P]) MissingEmbeddings(ctx context.Context) ([]*Record[P], error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+s.cols+` FROM `+s.table+`
		 WHERE deleted_at IS NULL AND embedding IS NULL
		 ORDER BY `+strings.Join(s.keyCols, ", ")+`, version`)
	if err != nil {
		return nil, fmt.Errorf("querying rows without embeddings: %w", err)
	}
	return s.scanAll(rows)
}

// WithEmbeddings returns all non-deleted rows that carry an embedding,
// used to rebuild the vector index at startup.
func (s *Store[P]) WithEmbeddings(ctx context.Context) ([]*Record[P], error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+s.cols+` FROM `+s.table+`
		 WHERE deleted_at IS NULL AND embedding IS NOT NULL
		 ORDER BY `+strings.Join(s.keyCols, ", ")+`, version`)
	if err != nil {
		return nil, fmt.Errorf("querying rows with embeddings: %w", err)
	}
	return s.scanAll(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store[P]) scan(sc rowScanner) (*Record[P], error) {
	rec := &Record[P]{Key: make(Key, len(s.keyCols))}

	dest := make([]any, 0, len(s.keyCols)+7)
	dest = append(dest, &rec.Identifier)
	for i := range rec.Key {
		dest = append(dest, &rec.Key[i])
	}
	var payload string
	var embedding sql.NullString
	var deletedAt sql.NullTime
	dest = append(dest, &rec.Version, &payload, &embedding, &rec.CreatedAt, &rec.UpdatedAt, &deletedAt)

	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(payload), &rec.Payload); err != nil {
		return nil, fmt.Errorf("decoding payload for %s: %w", rec.Identifier, err)
	}
	if embedding.Valid && embedding.String != "" {
		if err := json.Unmarshal([]byte(embedding.String), &rec.Embedding); err != nil {
			return nil, fmt.Errorf("decoding embedding for %s: %w", rec.Identifier, err)
		}
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		rec.DeletedAt = &t
	}
	return rec, nil
}

func (s *Store[P]) scanOne(row *sql.Row) (*Record[P], error) {
	rec, err := s.scan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.table, err)
	}
	return rec, nil
}

func (s *Store[P]) scanAll(rows *sql.Rows) ([]*Record[P], error) {
	defer rows.Close()
	var recs []*Record[P]
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", s.table, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func keyArgs(key Key) []any {
	args := make([]any, len(key))
	for i, k := range key {
		args[i] = k
	}
	return args
}

// isRetryable classifies the transient failures of the version race: a
// loser of the read-max-then-insert race hits the uniqueness constraint,
// and under WAL a concurrent writer can surface as a busy or locked
// error instead. The driver exposes both as strings only.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
