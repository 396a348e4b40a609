package medication

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu   sync.Mutex
	meds map[string][]string
	logs map[string][]IntakeEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		meds: make(map[string][]string),
		logs: make(map[string][]IntakeEntry),
	}
}

func (s *MemoryStore) Medications(ctx context.Context, subjectID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.meds[subjectID]...), nil
}

func (s *MemoryStore) UpdateMedications(ctx context.Context, subjectID string, fn func([]string) ([]string, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(append([]string(nil), s.meds[subjectID]...))
	if err != nil {
		return err
	}
	s.meds[subjectID] = next
	return nil
}

func (s *MemoryStore) IntakeLog(ctx context.Context, subjectID string) ([]IntakeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]IntakeEntry(nil), s.logs[subjectID]...), nil
}

func (s *MemoryStore) AppendIntake(ctx context.Context, subjectID string, entry IntakeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := append(s.logs[subjectID], entry)
	if len(log) > logCap {
		log = log[len(log)-logCap:]
	}
	s.logs[subjectID] = log
	return nil
}
