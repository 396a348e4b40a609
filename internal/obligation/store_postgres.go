package obligation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lautaro2705-commits/asistente-personal/pkg/sentinel"
)

// PostgresStore persists instances in one table:
//
//	obligations(subject_id TEXT, kind TEXT, period_key TEXT, state TEXT,
//	            attempt INT, sent_at TIMESTAMPTZ, response TEXT,
//	            PRIMARY KEY (subject_id, kind, period_key))
//
// The primary key is the at-most-one-instance-per-key invariant.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, subjectID string, kind Kind, key PeriodKey) (Instance, error) {
	var inst Instance
	var response sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT subject_id, kind, period_key, state, attempt, sent_at, response
		FROM obligations
		WHERE subject_id = $1 AND kind = $2 AND period_key = $3`,
		subjectID, kind, key).
		Scan(&inst.SubjectID, &inst.Kind, &inst.PeriodKey, &inst.State, &inst.Attempt, &inst.SentAt, &response)
	if errors.Is(err, sql.ErrNoRows) {
		return Instance{}, fmt.Errorf("obligation %s/%s/%s: %w", subjectID, kind, key, sentinel.ErrNotFound)
	}
	if err != nil {
		return Instance{}, fmt.Errorf("get obligation: %w", err)
	}
	inst.Response = response.String
	return inst, nil
}

func (s *PostgresStore) Put(ctx context.Context, inst Instance) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO obligations (subject_id, kind, period_key, state, attempt, sent_at, response)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (subject_id, kind, period_key) DO UPDATE SET
			state = EXCLUDED.state,
			attempt = EXCLUDED.attempt,
			sent_at = EXCLUDED.sent_at,
			response = EXCLUDED.response`,
		inst.SubjectID, inst.Kind, inst.PeriodKey, inst.State, inst.Attempt, inst.SentAt, inst.Response)
	if err != nil {
		return fmt.Errorf("put obligation: %w", err)
	}
	return nil
}

func (s *PostgresStore) Open(ctx context.Context) ([]Instance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject_id, kind, period_key, state, attempt, sent_at, response
		FROM obligations
		WHERE state NOT IN ($1, $2)
		ORDER BY subject_id, kind, period_key`,
		StateConfirmed, StateEscalated)
	if err != nil {
		return nil, fmt.Errorf("list open obligations: %w", err)
	}
	defer rows.Close()

	var out []Instance
	for rows.Next() {
		var inst Instance
		var response sql.NullString
		if err := rows.Scan(&inst.SubjectID, &inst.Kind, &inst.PeriodKey, &inst.State, &inst.Attempt, &inst.SentAt, &response); err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}
		inst.Response = response.String
		out = append(out, inst)
	}
	return out, rows.Err()
}
