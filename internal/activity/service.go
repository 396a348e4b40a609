package activity

import (
	"context"

	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Record increments today's count for the subject and prunes anything that
// fell out of the retention window.
func (s *Service) Record(ctx context.Context, subjectID string) error {
	now := requestcontext.Now(ctx)
	today := now.Format("2006-01-02")
	cutoff := now.AddDate(0, 0, -retentionDays).Format("2006-01-02")

	return s.store.Update(ctx, subjectID, func(ledger []DayCount) ([]DayCount, error) {
		kept := ledger[:0]
		bumped := false
		for _, dc := range ledger {
			if dc.Day < cutoff {
				continue
			}
			if dc.Day == today {
				dc.Count++
				bumped = true
			}
			kept = append(kept, dc)
		}
		if !bumped {
			kept = append(kept, DayCount{Day: today, Count: 1})
		}
		return kept, nil
	})
}

// Baseline is the average daily message count over the days the subject
// actually wrote. Zero when the ledger is empty.
func (s *Service) Baseline(ctx context.Context, subjectID string) (float64, error) {
	ledger, err := s.store.Ledger(ctx, subjectID)
	if err != nil {
		return 0, err
	}
	if len(ledger) == 0 {
		return 0, nil
	}
	total := 0
	for _, dc := range ledger {
		total += dc.Count
	}
	return float64(total) / float64(len(ledger)), nil
}

// SilentToday reports whether the subject has not written at all today while
// having an established habit of writing (at least minActiveDays days on
// record). A subject with no history is never flagged.
func (s *Service) SilentToday(ctx context.Context, subjectID string) (bool, error) {
	ledger, err := s.store.Ledger(ctx, subjectID)
	if err != nil {
		return false, err
	}
	if len(ledger) < minActiveDays {
		return false, nil
	}
	today := requestcontext.Now(ctx).Format("2006-01-02")
	for _, dc := range ledger {
		if dc.Day == today && dc.Count > 0 {
			return false, nil
		}
	}
	return true, nil
}

// minActiveDays is the history needed before silence means anything.
const minActiveDays = 3
