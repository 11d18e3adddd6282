// Package history records completed conversions. The default backend is a
// JSON file; Open switches to Postgres when given a DSN, with a silent
// fallback to the file when the connection cannot be established.
package history

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Record is one completed conversion or upload.
type Record struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Kind      string    `json:"kind"` // convert, upload
	Stages    []string  `json:"stages"`
	JobCount  int       `json:"job_count"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	records  []Record

	schemaOnce sync.Once
	schemaErr  error
}

// New returns a file-backed store at path.
func New(path string) *Store {
	return &Store{path: path}
}

// NewPostgres returns a Postgres-backed store.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Open prefers Postgres when dsn is non-empty and reachable, otherwise
// falls back to the file backend at path.
func Open(dsn, path string) *Store {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

// Append stores a record. The file backend persists synchronously.
func (s *Store) Append(ctx context.Context, rec Record) error {
	if s == nil {
		return nil
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if s.db != nil {
		return s.appendDB(ctx, rec)
	}
	return s.appendFile(rec)
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if s.db != nil {
		return s.recentDB(ctx, limit)
	}
	return s.recentFile(limit), nil
}

// Close releases the database handle, if any.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
