// Package calendar keeps per-subject scheduled events and answers range
// queries for the summary and the lookahead nudger.
package calendar

import (
	"context"
	"time"
)

// Event is one scheduled appointment. IDs are opaque; events are addressed
// by time range, never by position.
type Event struct {
	ID        string
	SubjectID string
	Title     string
	Start     time.Time
	End       time.Time
	Created   time.Time
}

// Store persists events per subject.
type Store interface {
	List(ctx context.Context, subjectID string) ([]Event, error)
	// ListAll returns every subject's events, for cross-subject sweeps.
	ListAll(ctx context.Context) ([]Event, error)
	Add(ctx context.Context, ev Event) error
}
