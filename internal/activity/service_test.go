package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lautaro2705-commits/asistente-personal/pkg/requestcontext"
)

func dayCtx(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func TestRecordAccumulatesPerDay(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	day := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Record(dayCtx(day), "s1"))
	require.NoError(t, svc.Record(dayCtx(day.Add(time.Hour)), "s1"))

	ledger, err := store.Ledger(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, 2, ledger[0].Count)
}

func TestRecordPrunesOldEntries(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)

	old := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.Record(dayCtx(old), "s1"))

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.Record(dayCtx(now), "s1"))

	ledger, err := store.Ledger(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, "2026-05-01", ledger[0].Day)
}

func TestBaseline(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	// 4, 2 and 0 messages over three days with entries on two of them.
	for i := 0; i < 4; i++ {
		require.NoError(t, svc.Record(dayCtx(start), "s1"))
	}
	day2 := start.AddDate(0, 0, 1)
	for i := 0; i < 2; i++ {
		require.NoError(t, svc.Record(dayCtx(day2), "s1"))
	}

	avg, err := svc.Baseline(context.Background(), "s1")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, avg, 0.001)
}

func TestSilentTodayNeedsHistory(t *testing.T) {
	svc := NewService(NewMemoryStore())
	today := time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC)

	silent, err := svc.SilentToday(dayCtx(today), "s1")
	require.NoError(t, err)
	assert.False(t, silent)
}

func TestSilentTodayDetectsSilence(t *testing.T) {
	svc := NewService(NewMemoryStore())
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Record(dayCtx(start.AddDate(0, 0, i)), "s1"))
	}

	later := time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC)
	silent, err := svc.SilentToday(dayCtx(later), "s1")
	require.NoError(t, err)
	assert.True(t, silent)

	require.NoError(t, svc.Record(dayCtx(later), "s1"))
	silent, err = svc.SilentToday(dayCtx(later), "s1")
	require.NoError(t, err)
	assert.False(t, silent)
}
