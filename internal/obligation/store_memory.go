package obligation

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lautaro2705-commits/asistente-personal/pkg/sentinel"
)

type MemoryStore struct {
	mu        sync.Mutex
	instances map[string]Instance
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{instances: make(map[string]Instance)}
}

func instanceKey(subjectID string, kind Kind, key PeriodKey) string {
	return fmt.Sprintf("%s|%s|%s", subjectID, kind, key)
}

func (s *MemoryStore) Get(ctx context.Context, subjectID string, kind Kind, key PeriodKey) (Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[instanceKey(subjectID, kind, key)]
	if !ok {
		return Instance{}, fmt.Errorf("obligation %s/%s/%s: %w", subjectID, kind, key, sentinel.ErrNotFound)
	}
	return inst, nil
}

func (s *MemoryStore) Put(ctx context.Context, inst Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[instanceKey(inst.SubjectID, inst.Kind, inst.PeriodKey)] = inst
	return nil
}

func (s *MemoryStore) Open(ctx context.Context) ([]Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Instance
	for _, inst := range s.instances {
		if !inst.State.Terminal() {
			out = append(out, inst)
		}
	}
	// Deterministic iteration keeps tests and logs stable.
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SubjectID != b.SubjectID {
			return a.SubjectID < b.SubjectID
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.PeriodKey < b.PeriodKey
	})
	return out, nil
}
