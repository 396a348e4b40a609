package organizer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStores bundles the five list stores over one database:
//
//	tasks(subject_id TEXT, id INT, text TEXT, done BOOL, created TIMESTAMPTZ,
//	      PRIMARY KEY (subject_id, id))
//	notes(subject_id TEXT, id INT, text TEXT, created TIMESTAMPTZ,
//	      PRIMARY KEY (subject_id, id))
//	shopping_items(subject_id TEXT, id INT, item TEXT, bought BOOL,
//	      added TIMESTAMPTZ, PRIMARY KEY (subject_id, id))
//	expenses(subject_id TEXT, id INT, amount DOUBLE PRECISION,
//	      description TEXT, category TEXT, date TIMESTAMPTZ,
//	      PRIMARY KEY (subject_id, id))
//	locations(subject_id TEXT PRIMARY KEY, city TEXT)
//
// Ids are positional per subject, so every Update rewrites the subject's rows
// as a unit inside one transaction.
type PostgresStores struct {
	Tasks     *PostgresTaskStore
	Notes     *PostgresNoteStore
	Shopping  *PostgresShoppingStore
	Expenses  *PostgresExpenseStore
	Locations *PostgresLocationStore
}

func NewPostgresStores(db *sql.DB) *PostgresStores {
	return &PostgresStores{
		Tasks:     &PostgresTaskStore{db: db},
		Notes:     &PostgresNoteStore{db: db},
		Shopping:  &PostgresShoppingStore{db: db},
		Expenses:  &PostgresExpenseStore{db: db},
		Locations: &PostgresLocationStore{db: db},
	}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// rewrite runs the shared read-modify-write cycle: select the subject's rows
// FOR UPDATE, apply fn, delete and reinsert.
func rewrite[T any](
	ctx context.Context,
	db *sql.DB,
	subjectID string,
	load func(ctx context.Context, q querier, subjectID string, forUpdate bool) ([]T, error),
	clear string,
	insert func(ctx context.Context, tx *sql.Tx, subjectID string, item T) error,
	fn func([]T) ([]T, error),
) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	current, err := load(ctx, tx, subjectID, true)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, clear, subjectID); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}
	for _, item := range next {
		if err := insert(ctx, tx, subjectID, item); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

type PostgresTaskStore struct {
	db *sql.DB
}

func (s *PostgresTaskStore) List(ctx context.Context, subjectID string) ([]Task, error) {
	return listTasks(ctx, s.db, subjectID, false)
}

func (s *PostgresTaskStore) Update(ctx context.Context, subjectID string, fn func([]Task) ([]Task, error)) error {
	return rewrite(ctx, s.db, subjectID, listTasks,
		`DELETE FROM tasks WHERE subject_id = $1`, insertTask, fn)
}

func listTasks(ctx context.Context, q querier, subjectID string, forUpdate bool) ([]Task, error) {
	query := `SELECT id, text, done, created FROM tasks WHERE subject_id = $1 ORDER BY id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Text, &t.Done, &t.Created); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func insertTask(ctx context.Context, tx *sql.Tx, subjectID string, t Task) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (subject_id, id, text, done, created)
		VALUES ($1, $2, $3, $4, $5)`,
		subjectID, t.ID, t.Text, t.Done, t.Created); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

type PostgresNoteStore struct {
	db *sql.DB
}

func (s *PostgresNoteStore) List(ctx context.Context, subjectID string) ([]Note, error) {
	return listNotes(ctx, s.db, subjectID, false)
}

func (s *PostgresNoteStore) Update(ctx context.Context, subjectID string, fn func([]Note) ([]Note, error)) error {
	return rewrite(ctx, s.db, subjectID, listNotes,
		`DELETE FROM notes WHERE subject_id = $1`, insertNote, fn)
}

func listNotes(ctx context.Context, q querier, subjectID string, forUpdate bool) ([]Note, error) {
	query := `SELECT id, text, created FROM notes WHERE subject_id = $1 ORDER BY id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Text, &n.Created); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func insertNote(ctx context.Context, tx *sql.Tx, subjectID string, n Note) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO notes (subject_id, id, text, created)
		VALUES ($1, $2, $3, $4)`,
		subjectID, n.ID, n.Text, n.Created); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

type PostgresShoppingStore struct {
	db *sql.DB
}

func (s *PostgresShoppingStore) List(ctx context.Context, subjectID string) ([]ShoppingItem, error) {
	return listShoppingItems(ctx, s.db, subjectID, false)
}

func (s *PostgresShoppingStore) Update(ctx context.Context, subjectID string, fn func([]ShoppingItem) ([]ShoppingItem, error)) error {
	return rewrite(ctx, s.db, subjectID, listShoppingItems,
		`DELETE FROM shopping_items WHERE subject_id = $1`, insertShoppingItem, fn)
}

func listShoppingItems(ctx context.Context, q querier, subjectID string, forUpdate bool) ([]ShoppingItem, error) {
	query := `SELECT id, item, bought, added FROM shopping_items WHERE subject_id = $1 ORDER BY id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	var out []ShoppingItem
	for rows.Next() {
		var item ShoppingItem
		if err := rows.Scan(&item.ID, &item.Item, &item.Bought, &item.Added); err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func insertShoppingItem(ctx context.Context, tx *sql.Tx, subjectID string, item ShoppingItem) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO shopping_items (subject_id, id, item, bought, added)
		VALUES ($1, $2, $3, $4, $5)`,
		subjectID, item.ID, item.Item, item.Bought, item.Added); err != nil {
		return fmt.Errorf("insert shopping item: %w", err)
	}
	return nil
}

type PostgresExpenseStore struct {
	db *sql.DB
}

func (s *PostgresExpenseStore) List(ctx context.Context, subjectID string) ([]Expense, error) {
	return listExpenses(ctx, s.db, subjectID, false)
}

func (s *PostgresExpenseStore) Update(ctx context.Context, subjectID string, fn func([]Expense) ([]Expense, error)) error {
	return rewrite(ctx, s.db, subjectID, listExpenses,
		`DELETE FROM expenses WHERE subject_id = $1`, insertExpense, fn)
}

func listExpenses(ctx context.Context, q querier, subjectID string, forUpdate bool) ([]Expense, error) {
	query := `SELECT id, amount, description, category, date FROM expenses WHERE subject_id = $1 ORDER BY id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Amount, &e.Description, &e.Category, &e.Date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func insertExpense(ctx context.Context, tx *sql.Tx, subjectID string, e Expense) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO expenses (subject_id, id, amount, description, category, date)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		subjectID, e.ID, e.Amount, e.Description, e.Category, e.Date); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

type PostgresLocationStore struct {
	db *sql.DB
}

func (s *PostgresLocationStore) Get(ctx context.Context, subjectID string) (string, error) {
	var city string
	err := s.db.QueryRowContext(ctx,
		`SELECT city FROM locations WHERE subject_id = $1`, subjectID).Scan(&city)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get location: %w", err)
	}
	return city, nil
}

func (s *PostgresLocationStore) Set(ctx context.Context, subjectID, city string) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO locations (subject_id, city) VALUES ($1, $2)
		ON CONFLICT (subject_id) DO UPDATE SET city = EXCLUDED.city`,
		subjectID, city); err != nil {
		return fmt.Errorf("set location: %w", err)
	}
	return nil
}
