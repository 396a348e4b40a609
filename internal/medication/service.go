package medication

import (
	"context"
	"fmt"
	"strings"

	dErrors "github.com/lautaro2705-commits/asistente-personal/pkg/domain-errors"
	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Add registers a medication by name. Names are unique per subject; a
// duplicate is a conflict so the caller can tell the user it already exists.
func (s *Service) Add(ctx context.Context, subjectID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "medication name required")
	}
	return s.store.UpdateMedications(ctx, subjectID, func(names []string) ([]string, error) {
		for _, n := range names {
			if strings.EqualFold(n, name) {
				return nil, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("medication %q already registered", name))
			}
		}
		return append(names, name), nil
	})
}

func (s *Service) Remove(ctx context.Context, subjectID, name string) error {
	return s.store.UpdateMedications(ctx, subjectID, func(names []string) ([]string, error) {
		kept := names[:0]
		found := false
		for _, n := range names {
			if strings.EqualFold(n, name) {
				found = true
				continue
			}
			kept = append(kept, n)
		}
		if !found {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("medication %q not found", name))
		}
		return kept, nil
	})
}

func (s *Service) List(ctx context.Context, subjectID string) ([]string, error) {
	return s.store.Medications(ctx, subjectID)
}

// LogTaken records that the subject confirmed the given period's intake
// today. Idempotent per day and period.
func (s *Service) LogTaken(ctx context.Context, subjectID string, period Period) error {
	if period != PeriodMorning && period != PeriodNight {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown period %q", period))
	}
	today := requestcontext.Now(ctx).Format("2006-01-02")
	taken, err := s.TakenToday(ctx, subjectID, period)
	if err != nil {
		return err
	}
	if taken {
		return nil
	}
	return s.store.AppendIntake(ctx, subjectID, IntakeEntry{Date: today, Period: period})
}

func (s *Service) TakenToday(ctx context.Context, subjectID string, period Period) (bool, error) {
	log, err := s.store.IntakeLog(ctx, subjectID)
	if err != nil {
		return false, err
	}
	today := requestcontext.Now(ctx).Format("2006-01-02")
	for _, e := range log {
		if e.Date == today && e.Period == period {
			return true, nil
		}
	}
	return false, nil
}

// IntakeCount reports how many intakes were confirmed in the trailing window
// of days, today included. Two confirmed periods on one day count twice.
func (s *Service) IntakeCount(ctx context.Context, subjectID string, days int) (int, error) {
	log, err := s.store.IntakeLog(ctx, subjectID)
	if err != nil {
		return 0, err
	}
	cutoff := requestcontext.Now(ctx).AddDate(0, 0, -(days - 1)).Format("2006-01-02")
	count := 0
	for _, e := range log {
		if e.Date >= cutoff {
			count++
		}
	}
	return count, nil
}

// InferPeriod maps a local time to the period it most plausibly refers to:
// before 14:00 is the morning intake, later is the night one.
func InferPeriod(ctx context.Context) Period {
	if requestcontext.Now(ctx).Hour() < 14 {
		return PeriodMorning
	}
	return PeriodNight
}

// ParsePeriod accepts an explicit period string or falls back to inference.
func ParsePeriod(ctx context.Context, raw string) Period {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(PeriodMorning):
		return PeriodMorning
	case string(PeriodNight):
		return PeriodNight
	default:
		return InferPeriod(ctx)
	}
}

func (s *Service) Format(ctx context.Context, subjectID string) (string, error) {
	meds, err := s.List(ctx, subjectID)
	if err != nil {
		return "", err
	}
	if len(meds) == 0 {
		return "💊 No tienes medicamentos registrados.", nil
	}
	var b strings.Builder
	b.WriteString("💊 *Tus medicamentos:*\n")
	for i, m := range meds {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, m)
	}
	return b.String(), nil
}

// ReminderText composes the reminder sent when a period's intake has not been
// confirmed yet.
func ReminderText(period Period, meds []string) string {
	list := strings.Join(meds, ", ")
	if period == PeriodMorning {
		return fmt.Sprintf("💊 *Recordatorio de medicamentos (mañana)*\n\n¿Ya tomaste tus medicamentos?\n\n📋 %s\n\nResponde 'tomé mis medicamentos' o 'ya tomé' cuando los hayas tomado.", list)
	}
	return fmt.Sprintf("💊 *Recordatorio de medicamentos (noche)*\n\n¿Ya tomaste tus medicamentos de la noche?\n\n📋 %s\n\nResponde 'tomé mis medicamentos' o 'ya tomé' cuando los hayas tomado.", list)
}
