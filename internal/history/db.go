package history

import (
	"context"
	"encoding/json"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS conversion_history (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	kind       TEXT NOT NULL,
	stages     TEXT NOT NULL,
	job_count  INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS conversion_history_created_at_idx
	ON conversion_history (created_at DESC);
`

func (s *Store) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, schemaSQL)
	})
	return s.schemaErr
}

func (s *Store) appendDB(ctx context.Context, rec Record) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	stages, err := json.Marshal(rec.Stages)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversion_history (id, source, kind, stages, job_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.Source, rec.Kind, string(stages), rec.JobCount, rec.CreatedAt)
	return err
}

func (s *Store) recentDB(ctx context.Context, limit int) ([]Record, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, kind, stages, job_count, created_at
		 FROM conversion_history
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		var stages string
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.Kind, &stages, &rec.JobCount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(stages), &rec.Stages); err != nil {
			rec.Stages = nil
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
