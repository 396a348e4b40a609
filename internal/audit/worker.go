package audit

import (
	"context"
	"io"
	"log/slog"
)

// Worker drains the publisher's inbox into the store. A store failure is
// logged and the event dropped; the trail is best-effort and must never wedge
// the channel for later events.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

type WorkerOption func(*Worker)

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) { w.logger = logger }
}

func NewWorker(store Store, inbox <-chan Event, opts ...WorkerOption) *Worker {
	w := &Worker{
		store:  store,
		inbox:  inbox,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit append failed",
					"kind", event.Kind, "subject_id", event.SubjectID, "error", err)
			}
		}
	}
}
