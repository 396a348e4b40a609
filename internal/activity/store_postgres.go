package activity

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore keeps one row per subject and day:
//
//	activity_ledger(subject_id TEXT, day TEXT, count INT,
//	                PRIMARY KEY (subject_id, day))
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ledger(ctx context.Context, subjectID string) ([]DayCount, error) {
	return s.ledger(ctx, s.db, subjectID, false)
}

func (s *PostgresStore) Update(ctx context.Context, subjectID string, fn func([]DayCount) ([]DayCount, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger update: %w", err)
	}
	defer tx.Rollback()

	current, err := s.ledger(ctx, tx, subjectID, true)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM activity_ledger WHERE subject_id = $1`, subjectID); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	for _, dc := range next {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO activity_ledger (subject_id, day, count) VALUES ($1, $2, $3)`,
			subjectID, dc.Day, dc.Count); err != nil {
			return fmt.Errorf("insert ledger row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger update: %w", err)
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) ledger(ctx context.Context, q querier, subjectID string, forUpdate bool) ([]DayCount, error) {
	query := `SELECT day, count FROM activity_ledger WHERE subject_id = $1 ORDER BY day`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	defer rows.Close()

	var out []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}
