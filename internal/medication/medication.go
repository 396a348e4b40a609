// Package medication keeps each subject's medication list and an intake log.
// The log is the source of truth for "already confirmed today": the
// obligation engine checks it before creating or re-sending a reminder.
package medication

import "context"

type Period string

const (
	PeriodMorning Period = "mañana"
	PeriodNight   Period = "noche"
)

// IntakeEntry records one confirmed intake. Date is the local calendar day
// in 2006-01-02 form; together with Period it matches an obligation's
// period-key.
type IntakeEntry struct {
	Date   string `json:"date"`
	Period Period `json:"period"`
}

// logCap bounds the intake log per subject: two periods a day for 60 days.
const logCap = 120

type Store interface {
	Medications(ctx context.Context, subjectID string) ([]string, error)
	UpdateMedications(ctx context.Context, subjectID string, fn func([]string) ([]string, error)) error

	IntakeLog(ctx context.Context, subjectID string) ([]IntakeEntry, error)
	AppendIntake(ctx context.Context, subjectID string, entry IntakeEntry) error
}
