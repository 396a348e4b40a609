// Package activity keeps a rolling ledger of how often each subject writes,
// used to tell ordinary quiet from anomalous silence.
package activity

import "context"

// retentionDays bounds the ledger window; entries older than this are pruned
// on every write.
const retentionDays = 30

// DayCount is one calendar day's inbound message count for a subject. Day is
// local, 2006-01-02 form.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type Store interface {
	Ledger(ctx context.Context, subjectID string) ([]DayCount, error)
	Update(ctx context.Context, subjectID string, fn func([]DayCount) ([]DayCount, error)) error
}
