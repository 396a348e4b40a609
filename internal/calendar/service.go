package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	dErrors "github.com/lautaro2705-commits/asistente-personal/pkg/domain-errors"
	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

const defaultDurationMinutes = 60

type Service struct {
	store Store
	loc   *time.Location
}

func NewService(store Store, loc *time.Location) *Service {
	return &Service{store: store, loc: loc}
}

// Create schedules an event from the wire-format fields. Date is YYYY-MM-DD
// and clock HH:MM, both interpreted in the service's location. durationMinutes
// of zero or less falls back to the default hour.
func (s *Service) Create(ctx context.Context, subjectID, title, date, clock string, durationMinutes int) (Event, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, s.loc)
	if err != nil {
		return Event{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("invalid event date %q %q", date, clock))
	}
	if durationMinutes <= 0 {
		durationMinutes = defaultDurationMinutes
	}
	ev := Event{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Title:     title,
		Start:     start,
		End:       start.Add(time.Duration(durationMinutes) * time.Minute),
		Created:   requestcontext.Now(ctx),
	}
	if err := s.store.Add(ctx, ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Today returns the subject's events whose start falls on the current local
// day, ordered by start time.
func (s *Service) Today(ctx context.Context, subjectID string) ([]Event, error) {
	now := requestcontext.Now(ctx).In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return s.between(ctx, subjectID, dayStart, dayStart.AddDate(0, 0, 1))
}

func (s *Service) between(ctx context.Context, subjectID string, from, to time.Time) ([]Event, error) {
	evs, err := s.store.List(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	var out []Event
	for _, ev := range evs {
		if !ev.Start.Before(from) && ev.Start.Before(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// StartingBetween returns every subject's events with a start inside
// [from, to). The lookahead nudger calls this each sweep.
func (s *Service) StartingBetween(ctx context.Context, from, to time.Time) ([]Event, error) {
	evs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []Event
	for _, ev := range evs {
		if !ev.Start.Before(from) && ev.Start.Before(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}
