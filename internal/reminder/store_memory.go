package reminder

import (
	"context"
	"sort"
	"sync"
)

type MemoryStore struct {
	mu        sync.Mutex
	reminders map[string][]Reminder
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reminders: make(map[string][]Reminder)}
}

func (s *MemoryStore) List(ctx context.Context, subjectID string) ([]Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Reminder(nil), s.reminders[subjectID]...), nil
}

func (s *MemoryStore) Update(ctx context.Context, subjectID string, fn func([]Reminder) ([]Reminder, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(append([]Reminder(nil), s.reminders[subjectID]...))
	if err != nil {
		return err
	}
	s.reminders[subjectID] = next
	return nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Reminder
	for _, rs := range s.reminders {
		out = append(out, rs...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubjectID != out[j].SubjectID {
			return out[i].SubjectID < out[j].SubjectID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
