package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lautaro2705-commits/asistente-personal/internal/calendar"
	"github.com/lautaro2705-commits/asistente-personal/internal/medication"
	"github.com/lautaro2705-commits/asistente-personal/internal/obligation"
	"github.com/lautaro2705-commits/asistente-personal/internal/subject"
	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

const (
	hydrationNudgeText = "💧 *¡Hora de tomar agua!*\n\nUn vaso ahora te va a hacer bien. 🚰"

	// the lookahead window: events starting between these offsets get a nudge
	lookaheadMin = 25 * time.Minute
	lookaheadMax = 35 * time.Minute

	// two intakes a day over a week
	weeklyExpectedIntakes = 14
)

// Subjects lists registered subjects and resolves caregiver chains.
type Subjects interface {
	List(ctx context.Context) ([]subject.Subject, error)
	Chain(ctx context.Context, subjectAddress string) (subject.CaregiverChain, error)
}

// Medications is the slice of the medication service the rounds consult.
type Medications interface {
	List(ctx context.Context, subjectID string) ([]string, error)
	TakenToday(ctx context.Context, subjectID string, period medication.Period) (bool, error)
	IntakeCount(ctx context.Context, subjectID string, days int) (int, error)
}

// Obligations opens instances and advances their timeouts.
type Obligations interface {
	Begin(ctx context.Context, subjectID string, kind obligation.Kind, key obligation.PeriodKey) error
	Tick(ctx context.Context) error
}

// RemindersFirer dispatches due one-shot reminders.
type RemindersFirer interface {
	FireDue(ctx context.Context) error
}

// Calendar answers the lookahead range query.
type Calendar interface {
	StartingBetween(ctx context.Context, from, to time.Time) ([]calendar.Event, error)
}

// Activity answers the silence check.
type Activity interface {
	SilentToday(ctx context.Context, subjectID string) (bool, error)
}

// Summarizer renders the daily digest.
type Summarizer interface {
	Daily(ctx context.Context, subjectID string) (string, error)
}

type Notifier interface {
	Send(ctx context.Context, address, text string) error
}

// CareJobs bundles every scheduled routine. Each method is a jobFunc; the
// runner pins the tick time into the context before calling, so all date
// math inside uses the sweep's clock.
type CareJobs struct {
	subjects    Subjects
	meds        Medications
	obligations Obligations
	reminders   RemindersFirer
	calendar    Calendar
	activity    Activity
	summary     Summarizer
	sender      Notifier
	loc         *time.Location
	logger      *slog.Logger
}

type JobsOption func(*CareJobs)

func WithJobsLogger(logger *slog.Logger) JobsOption {
	return func(j *CareJobs) { j.logger = logger }
}

func NewCareJobs(subjects Subjects, meds Medications, obligations Obligations, reminders RemindersFirer, cal Calendar, activity Activity, summary Summarizer, sender Notifier, loc *time.Location, opts ...JobsOption) *CareJobs {
	j := &CareJobs{
		subjects:    subjects,
		meds:        meds,
		obligations: obligations,
		reminders:   reminders,
		calendar:    cal,
		activity:    activity,
		summary:     summary,
		sender:      sender,
		loc:         loc,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Register wires every routine into the runner at its schedule.
func (j *CareJobs) Register(r *Runner) {
	r.Every("obligation-tick", time.Minute, j.TickObligations)
	r.Every("fire-reminders", time.Minute, j.FireReminders)
	r.Every("calendar-lookahead", 5*time.Minute, j.CalendarLookahead)
	r.Daily("morning-summary", "08:45", j.MorningSummary)
	r.Daily("medication-morning", "10:00", j.medicationRound(medication.PeriodMorning))
	r.Daily("medication-night", "21:00", j.medicationRound(medication.PeriodNight))
	r.Daily("wellness-check", "19:00", j.WellnessRound)
	r.Daily("hydration-late-morning", "11:00", j.HydrationNudge)
	r.Daily("hydration-afternoon", "17:00", j.HydrationNudge)
	r.Daily("inactivity-check", "20:00", j.InactivityCheck)
	r.Weekly("weekly-report", time.Sunday, "20:00", j.WeeklyReport)
}

func (j *CareJobs) TickObligations(ctx context.Context) error {
	return j.obligations.Tick(ctx)
}

func (j *CareJobs) FireReminders(ctx context.Context) error {
	return j.reminders.FireDue(ctx)
}

// CalendarLookahead nudges subjects about events starting in roughly half an
// hour. The window matches the sweep cadence so an event is caught exactly
// once.
func (j *CareJobs) CalendarLookahead(ctx context.Context) error {
	now := requestcontext.Now(ctx)
	events, err := j.calendar.StartingBetween(ctx, now.Add(lookaheadMin), now.Add(lookaheadMax))
	if err != nil {
		return fmt.Errorf("calendar lookahead: %w", err)
	}
	for _, ev := range events {
		text := fmt.Sprintf("⏰ Recordatorio: '%s' comienza a las %s (en ~30 minutos)",
			ev.Title, ev.Start.In(j.loc).Format("15:04"))
		if err := j.sender.Send(ctx, ev.SubjectID, text); err != nil {
			j.logger.ErrorContext(ctx, "event nudge failed",
				"subject", ev.SubjectID, "event", ev.ID, "error", err)
		}
	}
	return nil
}

// MorningSummary sends the daily digest to every registered subject. One
// subject's failure never blocks the rest.
func (j *CareJobs) MorningSummary(ctx context.Context) error {
	subjects, err := j.subjects.List(ctx)
	if err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}
	for _, s := range subjects {
		digest, err := j.summary.Daily(ctx, s.Address)
		if err != nil {
			j.logger.ErrorContext(ctx, "summary generation failed", "subject", s.Address, "error", err)
			continue
		}
		if err := j.sender.Send(ctx, s.Address, digest); err != nil {
			j.logger.ErrorContext(ctx, "summary send failed", "subject", s.Address, "error", err)
		}
	}
	return nil
}

// medicationRound opens the period's medication obligation for every subject
// with a registered list. Already-confirmed intakes short-circuit: no notice
// is sent for a period the subject logged on their own.
func (j *CareJobs) medicationRound(period medication.Period) jobFunc {
	return func(ctx context.Context) error {
		subjects, err := j.subjects.List(ctx)
		if err != nil {
			return fmt.Errorf("list subjects: %w", err)
		}
		day := requestcontext.Now(ctx).In(j.loc)
		key := obligation.QualifiedKey(day, string(period))

		for _, s := range subjects {
			names, err := j.meds.List(ctx, s.Address)
			if err != nil {
				j.logger.ErrorContext(ctx, "medication list failed", "subject", s.Address, "error", err)
				continue
			}
			if len(names) == 0 {
				continue
			}
			taken, err := j.meds.TakenToday(ctx, s.Address, period)
			if err != nil {
				j.logger.ErrorContext(ctx, "intake check failed", "subject", s.Address, "error", err)
				continue
			}
			if taken {
				continue
			}
			if err := j.obligations.Begin(ctx, s.Address, obligation.KindMedication, key); err != nil {
				j.logger.ErrorContext(ctx, "medication obligation begin failed",
					"subject", s.Address, "period", period, "error", err)
			}
		}
		return nil
	}
}

// WellnessRound opens the daily wellness obligation for feature-enabled
// subjects.
func (j *CareJobs) WellnessRound(ctx context.Context) error {
	subjects, err := j.subjects.List(ctx)
	if err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}
	key := obligation.DailyKey(requestcontext.Now(ctx).In(j.loc))
	for _, s := range subjects {
		if !s.Features.Wellness {
			continue
		}
		if err := j.obligations.Begin(ctx, s.Address, obligation.KindWellness, key); err != nil {
			j.logger.ErrorContext(ctx, "wellness obligation begin failed", "subject", s.Address, "error", err)
		}
	}
	return nil
}

// HydrationNudge sends the drink-water reminder to feature-enabled subjects.
// Send-only: nothing tracks whether they answer.
func (j *CareJobs) HydrationNudge(ctx context.Context) error {
	subjects, err := j.subjects.List(ctx)
	if err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}
	for _, s := range subjects {
		if !s.Features.Hydration {
			continue
		}
		if err := j.sender.Send(ctx, s.Address, hydrationNudgeText); err != nil {
			j.logger.ErrorContext(ctx, "hydration nudge failed", "subject", s.Address, "error", err)
		}
	}
	return nil
}

// InactivityCheck alerts the caregiver chain when a subject with activity
// monitoring sent nothing all day despite an established habit.
func (j *CareJobs) InactivityCheck(ctx context.Context) error {
	subjects, err := j.subjects.List(ctx)
	if err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}
	for _, s := range subjects {
		if !s.Features.Inactivity {
			continue
		}
		silent, err := j.activity.SilentToday(ctx, s.Address)
		if err != nil {
			j.logger.ErrorContext(ctx, "silence check failed", "subject", s.Address, "error", err)
			continue
		}
		if !silent {
			continue
		}
		text := fmt.Sprintf("🚨 *Alerta de actividad*\n\n%s no envió ningún mensaje hoy, algo inusual para su rutina. Por favor, intentá comunicarte.", s.Address)
		j.alertChain(ctx, s.Address, text)
	}
	return nil
}

// WeeklyReport sends the adherence digest to each monitored subject's chain.
func (j *CareJobs) WeeklyReport(ctx context.Context) error {
	subjects, err := j.subjects.List(ctx)
	if err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}
	for _, s := range subjects {
		if s.Role != subject.RoleMonitored {
			continue
		}
		names, err := j.meds.List(ctx, s.Address)
		if err != nil || len(names) == 0 {
			continue
		}
		count, err := j.meds.IntakeCount(ctx, s.Address, 7)
		if err != nil {
			j.logger.ErrorContext(ctx, "intake count failed", "subject", s.Address, "error", err)
			continue
		}
		text := fmt.Sprintf("📊 *Reporte semanal*\n\n💊 %s confirmó %d de %d tomas de medicamentos esta semana.",
			s.Address, count, weeklyExpectedIntakes)
		j.alertChain(ctx, s.Address, text)
	}
	return nil
}

func (j *CareJobs) alertChain(ctx context.Context, subjectAddress, text string) {
	chain, err := j.subjects.Chain(ctx, subjectAddress)
	if err != nil {
		j.logger.ErrorContext(ctx, "chain resolution failed", "subject", subjectAddress, "error", err)
		return
	}
	contacts := chain.Contacts()
	if len(contacts) == 0 {
		j.logger.WarnContext(ctx, "no caregiver contacts to alert", "subject", subjectAddress)
		return
	}
	for _, c := range contacts {
		if err := j.sender.Send(ctx, c.Address, text); err != nil {
			j.logger.ErrorContext(ctx, "caregiver alert failed",
				"subject", subjectAddress, "contact", c.Address, "error", err)
		}
	}
}
