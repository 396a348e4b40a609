package activity

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu      sync.Mutex
	ledgers map[string][]DayCount
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ledgers: make(map[string][]DayCount)}
}

func (s *MemoryStore) Ledger(ctx context.Context, subjectID string) ([]DayCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DayCount(nil), s.ledgers[subjectID]...), nil
}

func (s *MemoryStore) Update(ctx context.Context, subjectID string, fn func([]DayCount) ([]DayCount, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(append([]DayCount(nil), s.ledgers[subjectID]...))
	if err != nil {
		return err
	}
	s.ledgers[subjectID] = next
	return nil
}
