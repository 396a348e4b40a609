package medication

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore keeps the medication list as a text[] column and the intake
// log as ordinary rows:
//
//	medications(subject_id TEXT PRIMARY KEY, names TEXT[])
//	medication_intake(subject_id TEXT, day TEXT, period TEXT, logged_at TIMESTAMPTZ DEFAULT now())
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Medications(ctx context.Context, subjectID string) ([]string, error) {
	var names pq.StringArray
	err := s.db.QueryRowContext(ctx,
		`SELECT names FROM medications WHERE subject_id = $1`, subjectID).Scan(&names)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get medications: %w", err)
	}
	return names, nil
}

func (s *PostgresStore) UpdateMedications(ctx context.Context, subjectID string, fn func([]string) ([]string, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin medication update: %w", err)
	}
	defer tx.Rollback()

	var names pq.StringArray
	err = tx.QueryRowContext(ctx,
		`SELECT names FROM medications WHERE subject_id = $1 FOR UPDATE`, subjectID).Scan(&names)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("lock medications: %w", err)
	}

	next, err := fn(names)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO medications (subject_id, names) VALUES ($1, $2)
		ON CONFLICT (subject_id) DO UPDATE SET names = EXCLUDED.names`,
		subjectID, pq.StringArray(next))
	if err != nil {
		return fmt.Errorf("save medications: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit medication update: %w", err)
	}
	return nil
}

func (s *PostgresStore) IntakeLog(ctx context.Context, subjectID string) ([]IntakeEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, period FROM medication_intake
		WHERE subject_id = $1 ORDER BY logged_at`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("read intake log: %w", err)
	}
	defer rows.Close()

	var out []IntakeEntry
	for rows.Next() {
		var e IntakeEntry
		if err := rows.Scan(&e.Date, &e.Period); err != nil {
			return nil, fmt.Errorf("scan intake entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AppendIntake(ctx context.Context, subjectID string, entry IntakeEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO medication_intake (subject_id, day, period) VALUES ($1, $2, $3)`,
		subjectID, entry.Date, entry.Period)
	if err != nil {
		return fmt.Errorf("append intake: %w", err)
	}
	// Bounded retention, same cap the in-memory store applies.
	_, err = s.db.ExecContext(ctx, `
		DELETE FROM medication_intake
		WHERE subject_id = $1 AND logged_at < (
			SELECT min(logged_at) FROM (
				SELECT logged_at FROM medication_intake
				WHERE subject_id = $1 ORDER BY logged_at DESC LIMIT $2
			) recent
		)`, subjectID, logCap)
	if err != nil {
		return fmt.Errorf("prune intake log: %w", err)
	}
	return nil
}
