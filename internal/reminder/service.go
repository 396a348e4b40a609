package reminder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	dErrors "github.com/lautaro2705-commits/asistente-personal/pkg/domain-errors"
	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"

	"github.com/lautaro2705-commits/asistente-personal/internal/platform/metrics"
)

type Notifier interface {
	Send(ctx context.Context, address, text string) error
}

type Service struct {
	store    Store
	notifier Notifier
	loc      *time.Location
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, notifier Notifier, loc *time.Location, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		loc:      loc,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add schedules a one-shot reminder. fireAt is "2006-01-02 15:04" in the
// service's local timezone.
func (s *Service) Add(ctx context.Context, subjectID, message, fireAt string) (Reminder, error) {
	at, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(fireAt), s.loc)
	if err != nil {
		return Reminder{}, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("invalid reminder time %q, expected YYYY-MM-DD HH:MM", fireAt))
	}
	var added Reminder
	err = s.store.Update(ctx, subjectID, func(items []Reminder) ([]Reminder, error) {
		added = Reminder{
			SubjectID: subjectID,
			ID:        len(items) + 1,
			Message:   message,
			FireAt:    at,
			Created:   requestcontext.Now(ctx),
		}
		return append(items, added), nil
	})
	return added, err
}

// Delete removes the reminder with the given id and renumbers the rest.
func (s *Service) Delete(ctx context.Context, subjectID string, id int) error {
	return s.store.Update(ctx, subjectID, func(items []Reminder) ([]Reminder, error) {
		kept := items[:0]
		found := false
		for _, r := range items {
			if r.ID == id {
				found = true
				continue
			}
			kept = append(kept, r)
		}
		if !found {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("reminder %d not found", id))
		}
		for i := range kept {
			kept[i].ID = i + 1
		}
		return kept, nil
	})
}

// Pending returns the subject's not-yet-sent reminders.
func (s *Service) Pending(ctx context.Context, subjectID string) ([]Reminder, error) {
	all, err := s.store.List(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	pending := all[:0]
	for _, r := range all {
		if !r.Sent {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

// FireDue dispatches every due unsent reminder. The sent flag is re-checked
// inside the store's read-modify-write cycle, so a tick racing a slow
// previous tick cannot double-send the same record.
func (s *Service) FireDue(ctx context.Context) error {
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("scan reminders: %w", err)
	}
	now := requestcontext.Now(ctx)

	for _, due := range all {
		if due.Sent || now.Before(due.FireAt) {
			continue
		}
		if err := s.fire(ctx, due); err != nil {
			s.logger.ErrorContext(ctx, "reminder dispatch failed",
				"subject", due.SubjectID, "id", due.ID, "error", err)
		}
	}
	return nil
}

func (s *Service) fire(ctx context.Context, due Reminder) error {
	text := fmt.Sprintf("⏰ *Recordatorio:*\n\n%s", due.Message)
	if err := s.notifier.Send(ctx, due.SubjectID, text); err != nil {
		// Left unsent; the next tick retries.
		return err
	}
	err := s.store.Update(ctx, due.SubjectID, func(items []Reminder) ([]Reminder, error) {
		for i := range items {
			if items[i].ID == due.ID && !items[i].Sent {
				items[i].Sent = true
			}
		}
		return items, nil
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RemindersFired.Inc()
	}
	s.logger.InfoContext(ctx, "reminder fired", "subject", due.SubjectID, "id", due.ID)
	return nil
}

// Format renders the pending reminders for the subject.
func (s *Service) Format(ctx context.Context, subjectID string) (string, error) {
	pending, err := s.Pending(ctx, subjectID)
	if err != nil {
		return "", err
	}
	if len(pending) == 0 {
		return "⏰ No tienes recordatorios pendientes.", nil
	}
	var b strings.Builder
	b.WriteString("⏰ *Tus recordatorios:*\n")
	for _, r := range pending {
		fmt.Fprintf(&b, "  %d. %s - %s\n", r.ID, r.Message, r.FireAt.Format("02/01 15:04"))
	}
	return b.String(), nil
}
