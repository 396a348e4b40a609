package organizer

import (
	"context"
	"fmt"

	dErrors "github.com/lautaro2705-commits/asistente-personal/pkg/domain-errors"
	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

// DefaultCity is used for weather lookups until the subject saves a location.
const DefaultCity = "Cordoba,Argentina"

// Service owns the subject's personal lists. All id arguments are positional:
// after a deletion the remaining items are renumbered 1..n, so an id only
// identifies an item within the list state the caller last saw.
type Service struct {
	tasks     TaskStore
	notes     NoteStore
	shopping  ShoppingStore
	expenses  ExpenseStore
	locations LocationStore
}

func NewService(tasks TaskStore, notes NoteStore, shopping ShoppingStore, expenses ExpenseStore, locations LocationStore) *Service {
	return &Service{tasks: tasks, notes: notes, shopping: shopping, expenses: expenses, locations: locations}
}

func renumberTasks(items []Task) {
	for i := range items {
		items[i].ID = i + 1
	}
}

func renumberNotes(items []Note) {
	for i := range items {
		items[i].ID = i + 1
	}
}

func renumberShopping(items []ShoppingItem) {
	for i := range items {
		items[i].ID = i + 1
	}
}

// AddTask appends a pending task and returns it with its assigned id.
func (s *Service) AddTask(ctx context.Context, subjectID, text string) (Task, error) {
	var added Task
	err := s.tasks.Update(ctx, subjectID, func(items []Task) ([]Task, error) {
		added = Task{ID: len(items) + 1, Text: text, Created: requestcontext.Now(ctx)}
		return append(items, added), nil
	})
	return added, err
}

// CompleteTask marks the task with the given id as done.
func (s *Service) CompleteTask(ctx context.Context, subjectID string, id int) error {
	return s.tasks.Update(ctx, subjectID, func(items []Task) ([]Task, error) {
		for i := range items {
			if items[i].ID == id {
				items[i].Done = true
				return items, nil
			}
		}
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("task %d not found", id))
	})
}

// DeleteTask removes the task with the given id and renumbers the rest.
func (s *Service) DeleteTask(ctx context.Context, subjectID string, id int) error {
	return s.tasks.Update(ctx, subjectID, func(items []Task) ([]Task, error) {
		kept := items[:0]
		found := false
		for _, t := range items {
			if t.ID == id {
				found = true
				continue
			}
			kept = append(kept, t)
		}
		if !found {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("task %d not found", id))
		}
		renumberTasks(kept)
		return kept, nil
	})
}

// PendingTasks returns the subject's not-yet-done tasks.
func (s *Service) PendingTasks(ctx context.Context, subjectID string) ([]Task, error) {
	all, err := s.tasks.List(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	pending := all[:0]
	for _, t := range all {
		if !t.Done {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

func (s *Service) AddNote(ctx context.Context, subjectID, text string) (Note, error) {
	var added Note
	err := s.notes.Update(ctx, subjectID, func(items []Note) ([]Note, error) {
		added = Note{ID: len(items) + 1, Text: text, Created: requestcontext.Now(ctx)}
		return append(items, added), nil
	})
	return added, err
}

func (s *Service) DeleteNote(ctx context.Context, subjectID string, id int) error {
	return s.notes.Update(ctx, subjectID, func(items []Note) ([]Note, error) {
		kept := items[:0]
		found := false
		for _, n := range items {
			if n.ID == id {
				found = true
				continue
			}
			kept = append(kept, n)
		}
		if !found {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("note %d not found", id))
		}
		renumberNotes(kept)
		return kept, nil
	})
}

func (s *Service) Notes(ctx context.Context, subjectID string) ([]Note, error) {
	return s.notes.List(ctx, subjectID)
}

func (s *Service) AddShoppingItem(ctx context.Context, subjectID, item string) (ShoppingItem, error) {
	var added ShoppingItem
	err := s.shopping.Update(ctx, subjectID, func(items []ShoppingItem) ([]ShoppingItem, error) {
		added = ShoppingItem{ID: len(items) + 1, Item: item, Added: requestcontext.Now(ctx)}
		return append(items, added), nil
	})
	return added, err
}

func (s *Service) MarkItemBought(ctx context.Context, subjectID string, id int) error {
	return s.shopping.Update(ctx, subjectID, func(items []ShoppingItem) ([]ShoppingItem, error) {
		for i := range items {
			if items[i].ID == id {
				items[i].Bought = true
				return items, nil
			}
		}
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("shopping item %d not found", id))
	})
}

func (s *Service) DeleteShoppingItem(ctx context.Context, subjectID string, id int) error {
	return s.shopping.Update(ctx, subjectID, func(items []ShoppingItem) ([]ShoppingItem, error) {
		kept := items[:0]
		found := false
		for _, it := range items {
			if it.ID == id {
				found = true
				continue
			}
			kept = append(kept, it)
		}
		if !found {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("shopping item %d not found", id))
		}
		renumberShopping(kept)
		return kept, nil
	})
}

// ClearBoughtItems drops everything already marked bought and renumbers the
// remainder.
func (s *Service) ClearBoughtItems(ctx context.Context, subjectID string) error {
	return s.shopping.Update(ctx, subjectID, func(items []ShoppingItem) ([]ShoppingItem, error) {
		kept := items[:0]
		for _, it := range items {
			if !it.Bought {
				kept = append(kept, it)
			}
		}
		renumberShopping(kept)
		return kept, nil
	})
}

func (s *Service) ShoppingList(ctx context.Context, subjectID string) ([]ShoppingItem, error) {
	return s.shopping.List(ctx, subjectID)
}

func (s *Service) AddExpense(ctx context.Context, subjectID string, amount float64, description, category string) (Expense, error) {
	if category == "" {
		category = "General"
	}
	var added Expense
	err := s.expenses.Update(ctx, subjectID, func(items []Expense) ([]Expense, error) {
		added = Expense{ID: len(items) + 1, Amount: amount, Description: description, Category: category, Date: requestcontext.Now(ctx)}
		return append(items, added), nil
	})
	return added, err
}

func (s *Service) Expenses(ctx context.Context, subjectID string) ([]Expense, error) {
	return s.expenses.List(ctx, subjectID)
}

// Location returns the subject's saved city, falling back to DefaultCity.
func (s *Service) Location(ctx context.Context, subjectID string) (string, error) {
	city, err := s.locations.Get(ctx, subjectID)
	if err != nil {
		return "", err
	}
	if city == "" {
		return DefaultCity, nil
	}
	return city, nil
}

func (s *Service) SetLocation(ctx context.Context, subjectID, city string) error {
	return s.locations.Set(ctx, subjectID, city)
}
