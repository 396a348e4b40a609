package audit

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

const defaultInboxSize = 256

// Publisher hands events to the worker through a buffered inbox. Emission
// never blocks the caller: when the inbox is full the event is dropped and
// counted in the log, keeping the care path independent of store latency.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

type PublisherOption func(*Publisher)

func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

func WithInboxSize(n int) PublisherOption {
	return func(p *Publisher) { p.inbox = make(chan Event, n) }
}

func NewPublisher(opts ...PublisherOption) *Publisher {
	p := &Publisher{
		inbox:  make(chan Event, defaultInboxSize),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Inbox exposes the receive side for the worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, event dropped",
			"kind", event.Kind, "subject_id", event.SubjectID)
	}
}

// InvariantViolated satisfies the obligation auditor hook.
func (p *Publisher) InvariantViolated(ctx context.Context, subjectID, detail string) {
	p.Emit(ctx, Event{
		SubjectID: subjectID,
		Kind:      KindInvariantViolation,
		Detail:    detail,
	})
}

// EscalationRaised satisfies the escalation auditor hook.
func (p *Publisher) EscalationRaised(ctx context.Context, subjectID string, kind string, notified int) {
	p.Emit(ctx, Event{
		SubjectID: subjectID,
		Kind:      KindEscalationRaised,
		Detail:    fmt.Sprintf("%s obligation escalated, %d contact(s) notified", kind, notified),
	})
}
