package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore appends to an insert-only table:
//
//	audit_events(id BIGSERIAL PRIMARY KEY, ts TIMESTAMPTZ, subject_id TEXT,
//	             kind TEXT, detail TEXT)
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (ts, subject_id, kind, detail)
		VALUES ($1, $2, $3, $4)`,
		event.Timestamp, event.SubjectID, string(event.Kind), event.Detail)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, subject_id, kind, detail FROM audit_events
		WHERE subject_id = $1 ORDER BY id`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("read audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.Timestamp, &e.SubjectID, &kind, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Kind = Kind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}
