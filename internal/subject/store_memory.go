package subject

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lautaro2705-commits/asistente-personal/pkg/sentinel"
)

type MemoryStore struct {
	mu       sync.Mutex
	subjects map[string]Subject
	chains   map[string]CaregiverChain
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subjects: make(map[string]Subject),
		chains:   make(map[string]CaregiverChain),
	}
}

func (s *MemoryStore) Get(ctx context.Context, address string) (Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subj, ok := s.subjects[address]
	if !ok {
		return Subject{}, fmt.Errorf("subject %s: %w", address, sentinel.ErrNotFound)
	}
	return subj, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, subj Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects[subj.Address] = subj
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Subject, 0, len(s.subjects))
	for _, subj := range s.subjects {
		out = append(out, subj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

func (s *MemoryStore) Chain(ctx context.Context, subjectAddress string) (CaregiverChain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyChain(subjectAddress), nil
}

func (s *MemoryStore) UpdateChain(ctx context.Context, subjectAddress string, fn func(CaregiverChain) (CaregiverChain, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.copyChain(subjectAddress))
	if err != nil {
		return err
	}
	next.SubjectAddress = subjectAddress
	s.chains[subjectAddress] = next
	return nil
}

// copyChain returns an aliasing-safe copy; an empty chain when none exists,
// chains are created lazily on first contact registration.
func (s *MemoryStore) copyChain(subjectAddress string) CaregiverChain {
	c, ok := s.chains[subjectAddress]
	if !ok {
		return CaregiverChain{SubjectAddress: subjectAddress}
	}
	out := CaregiverChain{SubjectAddress: c.SubjectAddress}
	if c.Primary != nil {
		p := *c.Primary
		out.Primary = &p
	}
	out.Secondaries = append([]Contact(nil), c.Secondaries...)
	return out
}
