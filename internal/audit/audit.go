// Package audit keeps an append-only trail of the care events a reviewer
// would ask about later: escalations raised, invariants violated, admin
// sends. Emission is decoupled from persistence through a channel-fed worker
// so domain code never blocks on the store.
package audit

import (
	"context"
	"time"
)

// Kind classifies an audit event.
type Kind string

const (
	KindEscalationRaised   Kind = "escalation_raised"
	KindInvariantViolation Kind = "invariant_violation"
	KindAdminSend          Kind = "admin_send"
)

// Event is one trail entry. Detail is free-form human text; structured
// fields carry everything queries filter on.
type Event struct {
	Timestamp time.Time
	SubjectID string
	Kind      Kind
	Detail    string
}

// Store persists events append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subjectID string) ([]Event, error)
}
