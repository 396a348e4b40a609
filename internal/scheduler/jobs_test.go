package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lautaro2705-commits/asistente-personal/internal/calendar"
	"github.com/lautaro2705-commits/asistente-personal/internal/medication"
	"github.com/lautaro2705-commits/asistente-personal/internal/obligation"
	"github.com/lautaro2705-commits/asistente-personal/internal/subject"
	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

type stubSubjects struct {
	subjects []subject.Subject
	chains   map[string]subject.CaregiverChain
}

func (s *stubSubjects) List(ctx context.Context) ([]subject.Subject, error) {
	return s.subjects, nil
}

func (s *stubSubjects) Chain(ctx context.Context, addr string) (subject.CaregiverChain, error) {
	return s.chains[addr], nil
}

type recordingObligations struct {
	mu    sync.Mutex
	begun []string
	ticks int
}

func (r *recordingObligations) Begin(ctx context.Context, subjectID string, kind obligation.Kind, key obligation.PeriodKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.begun = append(r.begun, subjectID+"|"+string(kind)+"|"+string(key))
	return nil
}

func (r *recordingObligations) Tick(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
	return nil
}

type recordingSender struct {
	mu    sync.Mutex
	sends map[string][]string
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sends: make(map[string][]string)}
}

func (r *recordingSender) Send(ctx context.Context, address, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends[address] = append(r.sends[address], text)
	return nil
}

type stubFirer struct{ fired int }

func (s *stubFirer) FireDue(ctx context.Context) error { s.fired++; return nil }

type stubCalendar struct{ events []calendar.Event }

func (s *stubCalendar) StartingBetween(ctx context.Context, from, to time.Time) ([]calendar.Event, error) {
	var out []calendar.Event
	for _, ev := range s.events {
		if !ev.Start.Before(from) && ev.Start.Before(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

type stubActivity struct{ silent map[string]bool }

func (s *stubActivity) SilentToday(ctx context.Context, subjectID string) (bool, error) {
	return s.silent[subjectID], nil
}

type stubSummary struct{}

func (stubSummary) Daily(ctx context.Context, subjectID string) (string, error) {
	return "¡Buenos días! ☀️", nil
}

func monitored(addr string, features subject.Features) subject.Subject {
	return subject.Subject{Address: addr, Role: subject.RoleMonitored, Features: features}
}

func jobsFixture(subjects *stubSubjects, meds *medication.Service, obl *recordingObligations, sender *recordingSender) *CareJobs {
	return NewCareJobs(subjects, meds, obl, &stubFirer{}, &stubCalendar{},
		&stubActivity{silent: map[string]bool{}}, stubSummary{}, sender, time.UTC)
}

func at(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func TestMedicationRoundOpensObligationPerSubject(t *testing.T) {
	meds := medication.NewService(medication.NewMemoryStore())
	ctx := at(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))
	require.NoError(t, meds.Add(ctx, "ana", "Enalapril"))
	require.NoError(t, meds.Add(ctx, "luis", "Aspirina"))

	subjects := &stubSubjects{subjects: []subject.Subject{
		monitored("ana", subject.Features{}),
		monitored("luis", subject.Features{}),
		monitored("sinmeds", subject.Features{}),
	}}
	obl := &recordingObligations{}
	jobs := jobsFixture(subjects, meds, obl, newRecordingSender())

	require.NoError(t, jobs.medicationRound(medication.PeriodMorning)(ctx))

	assert.ElementsMatch(t, []string{
		"ana|medication|2026-05-04/mañana",
		"luis|medication|2026-05-04/mañana",
	}, obl.begun)
}

func TestMedicationRoundSkipsConfirmedIntake(t *testing.T) {
	meds := medication.NewService(medication.NewMemoryStore())
	ctx := at(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))
	require.NoError(t, meds.Add(ctx, "ana", "Enalapril"))
	require.NoError(t, meds.LogTaken(ctx, "ana", medication.PeriodMorning))

	subjects := &stubSubjects{subjects: []subject.Subject{monitored("ana", subject.Features{})}}
	obl := &recordingObligations{}
	jobs := jobsFixture(subjects, meds, obl, newRecordingSender())

	require.NoError(t, jobs.medicationRound(medication.PeriodMorning)(ctx))
	assert.Empty(t, obl.begun, "self-logged intake must suppress the notice")

	// night round still runs
	require.NoError(t, jobs.medicationRound(medication.PeriodNight)(ctx))
	assert.Equal(t, []string{"ana|medication|2026-05-04/noche"}, obl.begun)
}

func TestWellnessRoundIsFeatureGated(t *testing.T) {
	subjects := &stubSubjects{subjects: []subject.Subject{
		monitored("ana", subject.Features{Wellness: true}),
		monitored("luis", subject.Features{}),
	}}
	obl := &recordingObligations{}
	jobs := jobsFixture(subjects, medication.NewService(medication.NewMemoryStore()), obl, newRecordingSender())

	ctx := at(time.Date(2026, 5, 4, 19, 0, 0, 0, time.UTC))
	require.NoError(t, jobs.WellnessRound(ctx))

	assert.Equal(t, []string{"ana|wellness|2026-05-04"}, obl.begun)
}

func TestHydrationNudgeIsFeatureGatedAndSendOnly(t *testing.T) {
	subjects := &stubSubjects{subjects: []subject.Subject{
		monitored("ana", subject.Features{Hydration: true}),
		monitored("luis", subject.Features{}),
	}}
	obl := &recordingObligations{}
	sender := newRecordingSender()
	jobs := jobsFixture(subjects, medication.NewService(medication.NewMemoryStore()), obl, sender)

	ctx := at(time.Date(2026, 5, 4, 11, 0, 0, 0, time.UTC))
	require.NoError(t, jobs.HydrationNudge(ctx))

	require.Len(t, sender.sends["ana"], 1)
	assert.Contains(t, sender.sends["ana"][0], "¡Hora de tomar agua!")
	assert.Empty(t, sender.sends["luis"])
	assert.Empty(t, obl.begun, "hydration tracks no confirmation")
}

func TestInactivityCheckAlertsWholeChain(t *testing.T) {
	subjects := &stubSubjects{
		subjects: []subject.Subject{monitored("ana", subject.Features{Inactivity: true})},
		chains: map[string]subject.CaregiverChain{
			"ana": {
				SubjectAddress: "ana",
				Primary:        &subject.Contact{Name: "Marta", Address: "+549351000"},
				Secondaries:    []subject.Contact{{Address: "+549351111"}},
			},
		},
	}
	sender := newRecordingSender()
	jobs := NewCareJobs(subjects, medication.NewService(medication.NewMemoryStore()),
		&recordingObligations{}, &stubFirer{}, &stubCalendar{},
		&stubActivity{silent: map[string]bool{"ana": true}}, stubSummary{}, sender, time.UTC)

	ctx := at(time.Date(2026, 5, 4, 20, 0, 0, 0, time.UTC))
	require.NoError(t, jobs.InactivityCheck(ctx))

	require.Len(t, sender.sends["+549351000"], 1)
	require.Len(t, sender.sends["+549351111"], 1)
	assert.Contains(t, sender.sends["+549351000"][0], "🚨 *Alerta de actividad*")
	assert.Empty(t, sender.sends["ana"], "the subject is not alerted about themselves")
}

func TestCalendarLookaheadNudgesWindowOnly(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	cal := &stubCalendar{events: []calendar.Event{
		{SubjectID: "ana", Title: "Turno médico", Start: now.Add(30 * time.Minute)},
		{SubjectID: "ana", Title: "muy pronto", Start: now.Add(10 * time.Minute)},
		{SubjectID: "ana", Title: "muy lejos", Start: now.Add(2 * time.Hour)},
	}}
	sender := newRecordingSender()
	jobs := NewCareJobs(&stubSubjects{}, medication.NewService(medication.NewMemoryStore()),
		&recordingObligations{}, &stubFirer{}, cal,
		&stubActivity{}, stubSummary{}, sender, time.UTC)

	require.NoError(t, jobs.CalendarLookahead(at(now)))

	require.Len(t, sender.sends["ana"], 1)
	assert.Equal(t, "⏰ Recordatorio: 'Turno médico' comienza a las 10:30 (en ~30 minutos)", sender.sends["ana"][0])
}

func TestMorningSummaryReachesEverySubject(t *testing.T) {
	subjects := &stubSubjects{subjects: []subject.Subject{
		monitored("ana", subject.Features{}),
		{Address: "luis", Role: subject.RoleIndependent},
	}}
	sender := newRecordingSender()
	jobs := jobsFixture(subjects, medication.NewService(medication.NewMemoryStore()),
		&recordingObligations{}, sender)

	ctx := at(time.Date(2026, 5, 4, 8, 45, 0, 0, time.UTC))
	require.NoError(t, jobs.MorningSummary(ctx))

	assert.Len(t, sender.sends["ana"], 1)
	assert.Len(t, sender.sends["luis"], 1)
}

func TestWeeklyReportCountsIntakes(t *testing.T) {
	meds := medication.NewService(medication.NewMemoryStore())
	base := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	require.NoError(t, meds.Add(at(base), "ana", "Enalapril"))
	for d := 0; d < 3; d++ {
		ctx := at(base.AddDate(0, 0, -d))
		require.NoError(t, meds.LogTaken(ctx, "ana", medication.PeriodMorning))
		require.NoError(t, meds.LogTaken(ctx, "ana", medication.PeriodNight))
	}

	subjects := &stubSubjects{
		subjects: []subject.Subject{monitored("ana", subject.Features{})},
		chains: map[string]subject.CaregiverChain{
			"ana": {SubjectAddress: "ana", Primary: &subject.Contact{Address: "+549351000"}},
		},
	}
	sender := newRecordingSender()
	jobs := jobsFixture(subjects, meds, &recordingObligations{}, sender)

	require.NoError(t, jobs.WeeklyReport(at(base)))

	require.Len(t, sender.sends["+549351000"], 1)
	assert.Contains(t, sender.sends["+549351000"][0], "confirmó 6 de 14 tomas")
}

func TestRegisterWiresAllSchedules(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 5, 4, 7, 0, 0, 0, time.UTC)}
	r := NewRunner(time.UTC, WithClock(clock.Now))
	jobs := jobsFixture(&stubSubjects{}, medication.NewService(medication.NewMemoryStore()),
		&recordingObligations{}, newRecordingSender())

	jobs.Register(r)

	r.mu.Lock()
	names := make(map[string]bool, len(r.entries))
	for _, e := range r.entries {
		names[e.name] = true
	}
	r.mu.Unlock()
	for _, want := range []string{
		"obligation-tick", "fire-reminders", "calendar-lookahead",
		"morning-summary", "medication-morning", "medication-night",
		"wellness-check", "hydration-late-morning", "hydration-afternoon",
		"inactivity-check", "weekly-report",
	} {
		assert.True(t, names[want], "missing schedule %s", want)
	}
}
