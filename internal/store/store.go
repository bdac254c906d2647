// Package store persists per-document outline results in SQLite, keyed by
// document and session id. The store is owned by the caller and passed into
// the pipeline — there is no package-level state, so independent documents
// can be processed concurrently against the same database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Schema for the documents table. Applied by Init.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	doc_id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	title TEXT NOT NULL,
	result_json TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_session ON documents(session_id);
`

// ErrNotFound is returned when a document id has no stored result.
var ErrNotFound = errors.New("document not found")

// Record is one stored outline result.
type Record struct {
	DocID      string
	SessionID  string
	Filename   string
	Title      string
	ResultJSON []byte
	CreatedAt  time.Time
}

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. Use ":memory:" for an
// ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer; serialize access through a single conn.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Init creates the documents table if it doesn't exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}

// Save inserts or replaces a document's result.
func (s *Store) Save(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (doc_id, session_id, filename, title, result_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.DocID, rec.SessionID, rec.Filename, rec.Title, string(rec.ResultJSON), rec.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("save document %s: %w", rec.DocID, err)
	}
	return nil
}

// Get returns one document's stored result, or ErrNotFound.
func (s *Store) Get(ctx context.Context, docID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT doc_id, session_id, filename, title, result_json, created_at
		 FROM documents WHERE doc_id = ?`, docID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", docID, err)
	}
	return rec, nil
}

// ListSession returns all documents stored for a session, oldest first.
func (s *Store) ListSession(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id, session_id, filename, title, result_json, created_at
		 FROM documents WHERE session_id = ? ORDER BY created_at, doc_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// DeleteSession removes all documents belonging to a session and returns the
// number deleted.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(r rowScanner) (*Record, error) {
	var rec Record
	var resultJSON string
	var createdAt int64
	if err := r.Scan(&rec.DocID, &rec.SessionID, &rec.Filename, &rec.Title, &resultJSON, &createdAt); err != nil {
		return nil, err
	}
	rec.ResultJSON = []byte(resultJSON)
	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}
