package obligation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	calls int
}

func (f *fakeNotifier) Send(ctx context.Context, address, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return errors.New("gateway down")
	}
	f.sent = append(f.sent, address+": "+text)
	return nil
}

type fakeEscalator struct {
	mu        sync.Mutex
	escalated []Instance
	fail      bool
}

func (f *fakeEscalator) Escalate(ctx context.Context, inst Instance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("chain unresolvable")
	}
	f.escalated = append(f.escalated, inst)
	return nil
}

type staticComposer struct{}

func (staticComposer) NoticeText(ctx context.Context, inst Instance) (string, error) {
	return "aviso " + string(inst.Kind), nil
}

func (staticComposer) ReminderText(ctx context.Context, inst Instance) (string, error) {
	return "recordatorio " + string(inst.Kind), nil
}

var testTimeouts = map[Kind]Timeouts{
	KindMedication: {T1: 5 * time.Minute, T2: 5 * time.Minute},
	KindWellness:   {T1: 30 * time.Minute, T2: 30 * time.Minute},
}

func newTestService(notifier *fakeNotifier, escalator *fakeEscalator) *Service {
	return NewService(NewMemoryStore(), notifier, escalator, staticComposer{}, testTimeouts)
}

func at(t0 time.Time, d time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), t0.Add(d))
}

func TestEscalationTiming(t *testing.T) {
	notifier := &fakeNotifier{}
	escalator := &fakeEscalator{}
	svc := newTestService(notifier, escalator)

	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	key := QualifiedKey(t0, "mañana")

	require.NoError(t, svc.Begin(at(t0, 0), "s1", KindMedication, key))

	inst, err := svc.Get(context.Background(), "s1", KindMedication, key)
	require.NoError(t, err)
	assert.Equal(t, StateSent, inst.State)
	assert.Equal(t, 1, inst.Attempt)

	// Inside the first silence window nothing moves.
	require.NoError(t, svc.Tick(at(t0, 4*time.Minute+59*time.Second)))
	inst, _ = svc.Get(context.Background(), "s1", KindMedication, key)
	assert.Equal(t, StateSent, inst.State)

	require.NoError(t, svc.Tick(at(t0, 5*time.Minute+time.Second)))
	inst, _ = svc.Get(context.Background(), "s1", KindMedication, key)
	assert.Equal(t, StateReminded, inst.State)
	assert.Equal(t, 2, inst.Attempt)

	require.NoError(t, svc.Tick(at(t0, 9*time.Minute+59*time.Second)))
	inst, _ = svc.Get(context.Background(), "s1", KindMedication, key)
	assert.Equal(t, StateReminded, inst.State)

	require.NoError(t, svc.Tick(at(t0, 10*time.Minute+time.Second)))
	inst, _ = svc.Get(context.Background(), "s1", KindMedication, key)
	assert.Equal(t, StateEscalated, inst.State)
	require.Len(t, escalator.escalated, 1)
	assert.Equal(t, "s1", escalator.escalated[0].SubjectID)
}

func TestEscalatedIsTerminal(t *testing.T) {
	notifier := &fakeNotifier{}
	escalator := &fakeEscalator{}
	svc := newTestService(notifier, escalator)

	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	key := QualifiedKey(t0, "mañana")
	require.NoError(t, svc.Begin(at(t0, 0), "s1", KindMedication, key))
	require.NoError(t, svc.Tick(at(t0, 6*time.Minute)))
	require.NoError(t, svc.Tick(at(t0, 12*time.Minute)))
	require.Len(t, escalator.escalated, 1)

	// Further ticks are no-ops.
	require.NoError(t, svc.Tick(at(t0, 20*time.Minute)))
	require.NoError(t, svc.Tick(at(t0, time.Hour)))
	assert.Len(t, escalator.escalated, 1)
}

func TestReplyConfirmsAndFreezes(t *testing.T) {
	notifier := &fakeNotifier{}
	escalator := &fakeEscalator{}
	svc := newTestService(notifier, escalator)

	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	key := QualifiedKey(t0, "mañana")
	require.NoError(t, svc.Begin(at(t0, 0), "s1", KindMedication, key))

	confirmed, err := svc.HandleReply(at(t0, 3*time.Minute), "s1", "sí, ya tomé")
	require.NoError(t, err)
	require.Equal(t, []Kind{KindMedication}, confirmed)

	inst, err := svc.Get(context.Background(), "s1", KindMedication, key)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, inst.State)
	assert.Equal(t, "sí, ya tomé", inst.Response)

	// No reminder, no escalation after confirmation.
	require.NoError(t, svc.Tick(at(t0, 6*time.Minute)))
	require.NoError(t, svc.Tick(at(t0, 15*time.Minute)))
	inst, _ = svc.Get(context.Background(), "s1", KindMedication, key)
	assert.Equal(t, StateConfirmed, inst.State)
	assert.Empty(t, escalator.escalated)
}

func TestReplyFromReminded(t *testing.T) {
	notifier := &fakeNotifier{}
	escalator := &fakeEscalator{}
	svc := newTestService(notifier, escalator)

	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	key := QualifiedKey(t0, "mañana")
	require.NoError(t, svc.Begin(at(t0, 0), "s1", KindMedication, key))
	require.NoError(t, svc.Tick(at(t0, 6*time.Minute)))

	confirmed, err := svc.HandleReply(at(t0, 8*time.Minute), "s1", "listo")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindMedication}, confirmed)
}

func TestDailyReset(t *testing.T) {
	notifier := &fakeNotifier{}
	escalator := &fakeEscalator{}
	svc := newTestService(notifier, escalator)

	day1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.Begin(at(day1, 0), "s1", KindMedication, QualifiedKey(day1, "mañana")))
	_, err := svc.HandleReply(at(day1, time.Minute), "s1", "sí")
	require.NoError(t, err)

	day2 := day1.AddDate(0, 0, 1)
	require.NoError(t, svc.Begin(at(day2, 0), "s1", KindMedication, QualifiedKey(day2, "mañana")))

	inst, err := svc.Get(context.Background(), "s1", KindMedication, QualifiedKey(day2, "mañana"))
	require.NoError(t, err)
	assert.Equal(t, StateSent, inst.State)
	assert.Equal(t, 1, inst.Attempt)
}

func TestStalePriorDayInstanceSkipped(t *testing.T) {
	notifier := &fakeNotifier{}
	escalator := &fakeEscalator{}
	svc := newTestService(notifier, escalator)

	day1 := time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)
	key := QualifiedKey(day1, "noche")
	require.NoError(t, svc.Begin(at(day1, 0), "s1", KindMedication, key))

	// Next day's tick must not advance yesterday's open instance.
	day2 := day1.AddDate(0, 0, 1)
	require.NoError(t, svc.Tick(requestcontext.WithTime(context.Background(), day2)))

	inst, err := svc.Get(context.Background(), "s1", KindMedication, key)
	require.NoError(t, err)
	assert.Equal(t, StateSent, inst.State)
	assert.Empty(t, escalator.escalated)
}

func TestBeginIdempotentPerKey(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(notifier, &fakeEscalator{})

	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	key := QualifiedKey(t0, "mañana")
	require.NoError(t, svc.Begin(at(t0, 0), "s1", KindMedication, key))
	require.NoError(t, svc.Begin(at(t0, time.Minute), "s1", KindMedication, key))

	assert.Equal(t, 1, notifier.calls)
}

func TestFailedNoticeRetriesNextTick(t *testing.T) {
	notifier := &fakeNotifier{fail: true}
	svc := newTestService(notifier, &fakeEscalator{})

	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	key := QualifiedKey(t0, "mañana")
	err := svc.Begin(at(t0, 0), "s1", KindMedication, key)
	require.Error(t, err)

	inst, getErr := svc.Get(context.Background(), "s1", KindMedication, key)
	require.NoError(t, getErr)
	assert.Equal(t, StatePending, inst.State)

	notifier.fail = false
	require.NoError(t, svc.Tick(at(t0, time.Minute)))
	inst, _ = svc.Get(context.Background(), "s1", KindMedication, key)
	assert.Equal(t, StateSent, inst.State)
	assert.Equal(t, 1, inst.Attempt)
}

func TestFailedEscalationLeavesInstanceOpen(t *testing.T) {
	notifier := &fakeNotifier{}
	escalator := &fakeEscalator{fail: true}
	svc := newTestService(notifier, escalator)

	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	key := QualifiedKey(t0, "mañana")
	require.NoError(t, svc.Begin(at(t0, 0), "s1", KindMedication, key))
	require.NoError(t, svc.Tick(at(t0, 6*time.Minute)))
	require.NoError(t, svc.Tick(at(t0, 12*time.Minute)))

	inst, err := svc.Get(context.Background(), "s1", KindMedication, key)
	require.NoError(t, err)
	assert.Equal(t, StateReminded, inst.State)

	escalator.fail = false
	require.NoError(t, svc.Tick(at(t0, 13*time.Minute)))
	inst, _ = svc.Get(context.Background(), "s1", KindMedication, key)
	assert.Equal(t, StateEscalated, inst.State)
}

func TestReplyOnlyConfirmsMatchingKind(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(notifier, &fakeEscalator{})

	t0 := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)
	require.NoError(t, svc.Begin(at(t0, 0), "s1", KindWellness, DailyKey(t0)))

	confirmed, err := svc.HandleReply(at(t0, time.Minute), "s1", "tomé mis medicamentos")
	require.NoError(t, err)
	assert.Empty(t, confirmed)

	confirmed, err = svc.HandleReply(at(t0, 2*time.Minute), "s1", "estoy bien, gracias")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindWellness}, confirmed)
}

func TestReplyFromOtherSubjectIgnored(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(notifier, &fakeEscalator{})

	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	key := QualifiedKey(t0, "mañana")
	require.NoError(t, svc.Begin(at(t0, 0), "s1", KindMedication, key))

	confirmed, err := svc.HandleReply(at(t0, time.Minute), "s2", "sí")
	require.NoError(t, err)
	assert.Empty(t, confirmed)

	inst, _ := svc.Get(context.Background(), "s1", KindMedication, key)
	assert.Equal(t, StateSent, inst.State)
}
