// Package reminder implements one-shot reminders: fire the first tick at or
// after the requested time, exactly once per record.
package reminder

import (
	"context"
	"time"
)

type Reminder struct {
	SubjectID string    `json:"subject_id"`
	ID        int       `json:"id"`
	Message   string    `json:"message"`
	FireAt    time.Time `json:"fire_at"`
	Created   time.Time `json:"created"`
	Sent      bool      `json:"sent"`
}

// Store persists reminders per subject. Update runs fn under the store's
// write lock so the sent-flag check-then-set cannot interleave with another
// writer; ListAll feeds the scheduler's global scan.
type Store interface {
	List(ctx context.Context, subjectID string) ([]Reminder, error)
	Update(ctx context.Context, subjectID string, fn func([]Reminder) ([]Reminder, error)) error
	ListAll(ctx context.Context) ([]Reminder, error)
}
