package organizer

import "context"

// Stores are interface-driven to keep the domain logic testable and to allow
// swapping persistence without rewiring business code. Each store owns one
// whole per-subject list; mutation happens through Update so the
// read-modify-write cycle is serialized by the implementation (single writer
// per table).

type TaskStore interface {
	List(ctx context.Context, subjectID string) ([]Task, error)
	Update(ctx context.Context, subjectID string, fn func([]Task) ([]Task, error)) error
}

type NoteStore interface {
	List(ctx context.Context, subjectID string) ([]Note, error)
	Update(ctx context.Context, subjectID string, fn func([]Note) ([]Note, error)) error
}

type ShoppingStore interface {
	List(ctx context.Context, subjectID string) ([]ShoppingItem, error)
	Update(ctx context.Context, subjectID string, fn func([]ShoppingItem) ([]ShoppingItem, error)) error
}

type ExpenseStore interface {
	List(ctx context.Context, subjectID string) ([]Expense, error)
	Update(ctx context.Context, subjectID string, fn func([]Expense) ([]Expense, error)) error
}

type LocationStore interface {
	Get(ctx context.Context, subjectID string) (string, error)
	Set(ctx context.Context, subjectID, city string) error
}
