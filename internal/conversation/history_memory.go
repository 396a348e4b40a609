package conversation

import (
	"context"
	"sync"
)

type MemoryHistory struct {
	mu       sync.Mutex
	messages map[string][]Message
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{messages: make(map[string][]Message)}
}

func (h *MemoryHistory) Messages(ctx context.Context, subjectID string) ([]Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Message(nil), h.messages[subjectID]...), nil
}

func (h *MemoryHistory) Append(ctx context.Context, subjectID string, msg Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := append(h.messages[subjectID], msg)
	if len(msgs) > historyCap {
		msgs = msgs[len(msgs)-historyCap:]
	}
	h.messages[subjectID] = msgs
	return nil
}
