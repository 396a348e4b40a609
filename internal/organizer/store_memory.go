package organizer

import (
	"context"
	"sync"
)

// MemoryStore keeps every organizer list in process memory. It backs the
// default deployment and all unit tests; lists are copied on the way out so
// callers can never alias internal state.
type MemoryStore struct {
	mu        sync.Mutex
	tasks     map[string][]Task
	notes     map[string][]Note
	shopping  map[string][]ShoppingItem
	expenses  map[string][]Expense
	locations map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:     make(map[string][]Task),
		notes:     make(map[string][]Note),
		shopping:  make(map[string][]ShoppingItem),
		expenses:  make(map[string][]Expense),
		locations: make(map[string]string),
	}
}

func (s *MemoryStore) List(ctx context.Context, subjectID string) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Task(nil), s.tasks[subjectID]...), nil
}

func (s *MemoryStore) Update(ctx context.Context, subjectID string, fn func([]Task) ([]Task, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(append([]Task(nil), s.tasks[subjectID]...))
	if err != nil {
		return err
	}
	s.tasks[subjectID] = next
	return nil
}

// Tasks, Notes, Shopping and Expenses expose the per-list store views so the
// service can depend on the narrow interfaces.
func (s *MemoryStore) Tasks() TaskStore         { return s }
func (s *MemoryStore) Notes() NoteStore         { return noteView{s} }
func (s *MemoryStore) Shopping() ShoppingStore  { return shoppingView{s} }
func (s *MemoryStore) Expenses() ExpenseStore   { return expenseView{s} }
func (s *MemoryStore) Locations() LocationStore { return locationView{s} }

type noteView struct{ s *MemoryStore }

func (v noteView) List(ctx context.Context, subjectID string) ([]Note, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return append([]Note(nil), v.s.notes[subjectID]...), nil
}

func (v noteView) Update(ctx context.Context, subjectID string, fn func([]Note) ([]Note, error)) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	next, err := fn(append([]Note(nil), v.s.notes[subjectID]...))
	if err != nil {
		return err
	}
	v.s.notes[subjectID] = next
	return nil
}

type shoppingView struct{ s *MemoryStore }

func (v shoppingView) List(ctx context.Context, subjectID string) ([]ShoppingItem, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return append([]ShoppingItem(nil), v.s.shopping[subjectID]...), nil
}

func (v shoppingView) Update(ctx context.Context, subjectID string, fn func([]ShoppingItem) ([]ShoppingItem, error)) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	next, err := fn(append([]ShoppingItem(nil), v.s.shopping[subjectID]...))
	if err != nil {
		return err
	}
	v.s.shopping[subjectID] = next
	return nil
}

type expenseView struct{ s *MemoryStore }

func (v expenseView) List(ctx context.Context, subjectID string) ([]Expense, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return append([]Expense(nil), v.s.expenses[subjectID]...), nil
}

func (v expenseView) Update(ctx context.Context, subjectID string, fn func([]Expense) ([]Expense, error)) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	next, err := fn(append([]Expense(nil), v.s.expenses[subjectID]...))
	if err != nil {
		return err
	}
	v.s.expenses[subjectID] = next
	return nil
}

type locationView struct{ s *MemoryStore }

func (v locationView) Get(ctx context.Context, subjectID string) (string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return v.s.locations[subjectID], nil
}

func (v locationView) Set(ctx context.Context, subjectID, city string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.locations[subjectID] = city
	return nil
}
