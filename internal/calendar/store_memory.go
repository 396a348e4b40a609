package calendar

import (
	"context"
	"sort"
	"sync"
)

type MemoryStore struct {
	mu     sync.Mutex
	events map[string][]Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string][]Event)}
}

func (s *MemoryStore) List(ctx context.Context, subjectID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Event(nil), s.events[subjectID]...)
	sortEvents(out)
	return out, nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, evs := range s.events {
		out = append(out, evs...)
	}
	sortEvents(out)
	return out, nil
}

func (s *MemoryStore) Add(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.SubjectID] = append(s.events[ev.SubjectID], ev)
	return nil
}

func sortEvents(evs []Event) {
	sort.Slice(evs, func(i, j int) bool {
		if !evs[i].Start.Equal(evs[j].Start) {
			return evs[i].Start.Before(evs[j].Start)
		}
		return evs[i].SubjectID < evs[j].SubjectID
	})
}
