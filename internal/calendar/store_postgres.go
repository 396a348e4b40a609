package calendar

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists events in one table:
//
//	events(id TEXT PRIMARY KEY, subject_id TEXT, title TEXT,
//	       start_at TIMESTAMPTZ, end_at TIMESTAMPTZ, created TIMESTAMPTZ)
//
// Events are append-only and keyed by uuid, so no rewrite cycle is needed.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Add(ctx context.Context, event Event) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, subject_id, title, start_at, end_at, created)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.SubjectID, event.Title, event.Start, event.End, event.Created); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, subjectID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_id, title, start_at, end_at, created
		FROM events WHERE subject_id = $1 ORDER BY start_at, subject_id`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_id, title, start_at, end_at, created
		FROM events ORDER BY start_at, subject_id`)
	if err != nil {
		return nil, fmt.Errorf("list all events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.SubjectID, &e.Title, &e.Start, &e.End, &e.Created); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
