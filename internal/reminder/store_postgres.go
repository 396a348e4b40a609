package reminder

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists reminders in one table:
//
//	reminders(subject_id TEXT, id INT, message TEXT, fire_at TIMESTAMPTZ,
//	          created TIMESTAMPTZ, sent BOOL, PRIMARY KEY (subject_id, id))
//
// Ids are positional per subject, so Update rewrites the subject's rows as a
// unit inside one transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context, subjectID string) ([]Reminder, error) {
	return s.list(ctx, s.db, subjectID, false)
}

func (s *PostgresStore) Update(ctx context.Context, subjectID string, fn func([]Reminder) ([]Reminder, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reminder update: %w", err)
	}
	defer tx.Rollback()

	current, err := s.list(ctx, tx, subjectID, true)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE subject_id = $1`, subjectID); err != nil {
		return fmt.Errorf("clear reminders: %w", err)
	}
	for _, r := range next {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reminders (subject_id, id, message, fire_at, created, sent)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			subjectID, r.ID, r.Message, r.FireAt, r.Created, r.Sent); err != nil {
			return fmt.Errorf("insert reminder: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reminder update: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject_id, id, message, fire_at, created, sent
		FROM reminders ORDER BY subject_id, id`)
	if err != nil {
		return nil, fmt.Errorf("list all reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) list(ctx context.Context, q querier, subjectID string, forUpdate bool) ([]Reminder, error) {
	query := `
		SELECT subject_id, id, message, fire_at, created, sent
		FROM reminders WHERE subject_id = $1 ORDER BY id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

func scanReminders(rows *sql.Rows) ([]Reminder, error) {
	var out []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.SubjectID, &r.ID, &r.Message, &r.FireAt, &r.Created, &r.Sent); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
