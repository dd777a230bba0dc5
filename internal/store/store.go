// Package store persists scan results in SQLite. History is bounded: only
// the newest scans are kept, older rows are pruned on every save.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"brandscan/internal/dbopen"
	"brandscan/internal/idgen"
)

// HistoryLimit is the number of scans retained.
const HistoryLimit = 50

// Schema creates the scans table.
const Schema = `
CREATE TABLE IF NOT EXISTS scans (
	id            TEXT PRIMARY KEY,
	url           TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	primary_color TEXT NOT NULL DEFAULT '',
	logo_url      TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	result_json   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at DESC);
`

// ErrNotFound is returned when a scan ID does not exist.
var ErrNotFound = errors.New("store: scan not found")

// Summary is one history row without the full result payload.
type Summary struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	PrimaryColor string    `json:"primary_color,omitempty"`
	LogoURL      string    `json:"logo_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store wraps the scans table.
type Store struct {
	db  *sql.DB
	ids idgen.Generator
	now func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithIDGenerator overrides the scan ID generator. Default: "scan_"-prefixed
// UUIDv7.
func WithIDGenerator(g idgen.Generator) Option { return func(s *Store) { s.ids = g } }

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// New creates a Store over an open database and ensures the schema exists.
func New(db *sql.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, ids: idgen.Prefixed("scan_", idgen.UUIDv7()), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return s, nil
}

// Open opens (or creates) the database at path and returns a Store over it.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll())
	if err != nil {
		return nil, err
	}
	s, err := New(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Save stores one scan result and prunes history beyond the limit.
// The result is stored as JSON; url, title, primary color, and logo URL
// are denormalized for cheap history listings. Returns the new scan ID.
func (s *Store) Save(ctx context.Context, url, title, primaryColor, logoURL string, result any) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("store: marshal result: %w", err)
	}

	id := s.ids()
	createdAt := s.now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scans (id, url, title, primary_color, logo_url, created_at, result_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, url, title, primaryColor, logoURL, createdAt, string(payload))
	if err != nil {
		return "", fmt.Errorf("store: insert scan: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM scans WHERE id NOT IN (
			SELECT id FROM scans ORDER BY created_at DESC, id DESC LIMIT ?
		)`, HistoryLimit)
	if err != nil {
		return "", fmt.Errorf("store: prune history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store: commit: %w", err)
	}
	return id, nil
}

// History lists retained scans, newest first.
func (s *Store) History(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, primary_color, logo_url, created_at
		 FROM scans ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: query history: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		var createdAt string
		if err := rows.Scan(&sm.ID, &sm.URL, &sm.Title, &sm.PrimaryColor, &sm.LogoURL, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			sm.CreatedAt = t
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Get returns the full stored result JSON for one scan.
func (s *Store) Get(ctx context.Context, id string) (json.RawMessage, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM scans WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get scan: %w", err)
	}
	return json.RawMessage(payload), nil
}

// Delete removes one scan.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete scan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes all scans and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scans`)
	if err != nil {
		return 0, fmt.Errorf("store: clear history: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
