// Package obligation implements the per-subject confirmation state machines.
// An instance tracks one expected acknowledgment (morning medication on a
// given day, the daily wellness reply) and walks
// Pending -> Sent -> Reminded -> Escalated on timeouts, short-circuiting to
// Confirmed when a matching reply arrives. Confirmed and Escalated are
// terminal; a new calendar day gets a fresh instance under a fresh key.
package obligation

import (
	"fmt"
	"time"
)

type Kind string

const (
	KindMedication Kind = "medication"
	KindWellness   Kind = "wellness"
)

type State string

const (
	StatePending   State = "pending"
	StateSent      State = "sent"
	StateReminded  State = "reminded"
	StateConfirmed State = "confirmed"
	StateEscalated State = "escalated"
)

func (s State) Terminal() bool {
	return s == StateConfirmed || s == StateEscalated
}

// PeriodKey scopes an instance to one calendar day, optionally qualified
// ("2026-05-01/mañana"). The day prefix is what the scheduler's today-guard
// compares against.
type PeriodKey string

func DailyKey(day time.Time) PeriodKey {
	return PeriodKey(day.Format("2006-01-02"))
}

func QualifiedKey(day time.Time, qualifier string) PeriodKey {
	return PeriodKey(fmt.Sprintf("%s/%s", day.Format("2006-01-02"), qualifier))
}

func (k PeriodKey) Day() string {
	if len(k) < 10 {
		return string(k)
	}
	return string(k[:10])
}

// Qualifier returns the part after the day, empty for unqualified keys.
func (k PeriodKey) Qualifier() string {
	if len(k) > 11 {
		return string(k[11:])
	}
	return ""
}

type Instance struct {
	SubjectID string    `json:"subject_id"`
	Kind      Kind      `json:"kind"`
	PeriodKey PeriodKey `json:"period_key"`
	State     State     `json:"state"`
	Attempt   int       `json:"attempt"`
	SentAt    time.Time `json:"sent_at"`
	Response  string    `json:"response,omitempty"`
}

// Timeouts configures one obligation kind: T1 is the silence window after the
// first notice before the reminder, T2 the window after the reminder before
// escalation.
type Timeouts struct {
	T1 time.Duration
	T2 time.Duration
}
