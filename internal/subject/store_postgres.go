package subject

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lautaro2705-commits/asistente-personal/pkg/sentinel"
)

// PostgresStore persists subjects in two tables:
//
//	subjects(address TEXT PRIMARY KEY, role TEXT, hydration BOOL,
//	         wellness BOOL, inactivity BOOL, created_at TIMESTAMPTZ)
//	caregiver_contacts(subject_address TEXT, name TEXT, address TEXT,
//	                   is_primary BOOL, position INT,
//	                   PRIMARY KEY (subject_address, address))
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, address string) (Subject, error) {
	var subj Subject
	err := s.db.QueryRowContext(ctx, `
		SELECT address, role, hydration, wellness, inactivity, created_at
		FROM subjects WHERE address = $1`, address).
		Scan(&subj.Address, &subj.Role, &subj.Features.Hydration, &subj.Features.Wellness, &subj.Features.Inactivity, &subj.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Subject{}, fmt.Errorf("subject %s: %w", address, sentinel.ErrNotFound)
	}
	if err != nil {
		return Subject{}, fmt.Errorf("get subject: %w", err)
	}
	return subj, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, subj Subject) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subjects (address, role, hydration, wellness, inactivity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (address) DO UPDATE SET
			role = EXCLUDED.role,
			hydration = EXCLUDED.hydration,
			wellness = EXCLUDED.wellness,
			inactivity = EXCLUDED.inactivity`,
		subj.Address, subj.Role, subj.Features.Hydration, subj.Features.Wellness, subj.Features.Inactivity, subj.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert subject: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Subject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, role, hydration, wellness, inactivity, created_at
		FROM subjects ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var out []Subject
	for rows.Next() {
		var subj Subject
		if err := rows.Scan(&subj.Address, &subj.Role, &subj.Features.Hydration, &subj.Features.Wellness, &subj.Features.Inactivity, &subj.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		out = append(out, subj)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Chain(ctx context.Context, subjectAddress string) (CaregiverChain, error) {
	return s.readChain(ctx, s.db, subjectAddress)
}

func (s *PostgresStore) UpdateChain(ctx context.Context, subjectAddress string, fn func(CaregiverChain) (CaregiverChain, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chain update: %w", err)
	}
	defer tx.Rollback()

	// Serializes concurrent chain edits for one subject.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, subjectAddress); err != nil {
		return fmt.Errorf("lock chain: %w", err)
	}

	current, err := s.readChain(ctx, tx, subjectAddress)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	next.SubjectAddress = subjectAddress

	if _, err := tx.ExecContext(ctx, `DELETE FROM caregiver_contacts WHERE subject_address = $1`, subjectAddress); err != nil {
		return fmt.Errorf("clear chain: %w", err)
	}
	if next.Primary != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO caregiver_contacts (subject_address, name, address, is_primary, position)
			VALUES ($1, $2, $3, TRUE, 0)`,
			subjectAddress, next.Primary.Name, next.Primary.Address); err != nil {
			return fmt.Errorf("insert primary contact: %w", err)
		}
	}
	for i, c := range next.Secondaries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO caregiver_contacts (subject_address, name, address, is_primary, position)
			VALUES ($1, $2, $3, FALSE, $4)`,
			subjectAddress, c.Name, c.Address, i+1); err != nil {
			return fmt.Errorf("insert secondary contact: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chain update: %w", err)
	}
	return nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) readChain(ctx context.Context, q querier, subjectAddress string) (CaregiverChain, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT name, address, is_primary
		FROM caregiver_contacts
		WHERE subject_address = $1
		ORDER BY position`, subjectAddress)
	if err != nil {
		return CaregiverChain{}, fmt.Errorf("read chain: %w", err)
	}
	defer rows.Close()

	chain := CaregiverChain{SubjectAddress: subjectAddress}
	for rows.Next() {
		var c Contact
		var primary bool
		if err := rows.Scan(&c.Name, &c.Address, &primary); err != nil {
			return CaregiverChain{}, fmt.Errorf("scan contact: %w", err)
		}
		if primary {
			p := c
			chain.Primary = &p
		} else {
			chain.Secondaries = append(chain.Secondaries, c)
		}
	}
	return chain, rows.Err()
}
