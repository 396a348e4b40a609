package medication

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/lautaro2705-commits/asistente-personal/pkg/domain-errors"
	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

func TestAddRejectsDuplicates(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "s1", "Ibuprofeno"))
	err := svc.Add(ctx, "s1", "ibuprofeno")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRemoveUnknown(t *testing.T) {
	svc := NewService(NewMemoryStore())

	err := svc.Remove(context.Background(), "s1", "Paracetamol")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestTakenTodayScopedToDayAndPeriod(t *testing.T) {
	svc := NewService(NewMemoryStore())
	day1 := requestcontext.WithTime(context.Background(), time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))

	require.NoError(t, svc.LogTaken(day1, "s1", PeriodMorning))

	taken, err := svc.TakenToday(day1, "s1", PeriodMorning)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = svc.TakenToday(day1, "s1", PeriodNight)
	require.NoError(t, err)
	assert.False(t, taken)

	day2 := requestcontext.WithTime(context.Background(), time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC))
	taken, err = svc.TakenToday(day2, "s1", PeriodMorning)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestLogTakenIdempotentPerPeriod(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))

	require.NoError(t, svc.LogTaken(ctx, "s1", PeriodMorning))
	require.NoError(t, svc.LogTaken(ctx, "s1", PeriodMorning))

	log, err := store.IntakeLog(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, log, 1)
}

func TestIntakeLogCapped(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < logCap+10; i++ {
		entry := IntakeEntry{Date: fmt.Sprintf("2026-01-%03d", i), Period: PeriodMorning}
		require.NoError(t, store.AppendIntake(ctx, "s1", entry))
	}

	log, err := store.IntakeLog(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, log, logCap)
	assert.Equal(t, "2026-01-010", log[0].Date)
}

func TestInferPeriod(t *testing.T) {
	morning := requestcontext.WithTime(context.Background(), time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC))
	assert.Equal(t, PeriodMorning, InferPeriod(morning))

	night := requestcontext.WithTime(context.Background(), time.Date(2026, 5, 1, 14, 0, 0, 0, time.UTC))
	assert.Equal(t, PeriodNight, InferPeriod(night))
}

func TestParsePeriodExplicitOverridesClock(t *testing.T) {
	night := requestcontext.WithTime(context.Background(), time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC))
	assert.Equal(t, PeriodMorning, ParsePeriod(night, "Mañana"))
	assert.Equal(t, PeriodNight, ParsePeriod(night, "algo raro"))
}

func TestReminderTextListsMedications(t *testing.T) {
	out := ReminderText(PeriodMorning, []string{"IbuprofenoX", "Enalapril"})
	assert.Contains(t, out, "IbuprofenoX, Enalapril")
	assert.Contains(t, out, "(mañana)")
}
