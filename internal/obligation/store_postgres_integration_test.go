//go:build integration

package obligation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lautaro2705-commits/asistente-personal/internal/obligation"
	"github.com/lautaro2705-commits/asistente-personal/pkg/testutil/containers"
)

func TestPostgresStoreRoundTrip(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := obligation.NewPostgresStore(pg.DB)
	ctx := context.Background()

	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	key := obligation.QualifiedKey(day, "mañana")
	inst := obligation.Instance{
		SubjectID: "whatsapp:+5491155550001",
		Kind:      obligation.KindMedication,
		PeriodKey: key,
		State:     obligation.StateSent,
		Attempt:   1,
		SentAt:    day.Add(10 * time.Hour),
	}
	require.NoError(t, store.Put(ctx, inst))

	got, err := store.Get(ctx, inst.SubjectID, inst.Kind, key)
	require.NoError(t, err)
	assert.Equal(t, obligation.StateSent, got.State)
	assert.Equal(t, 1, got.Attempt)
	assert.True(t, got.SentAt.Equal(inst.SentAt))
}

func TestPostgresStorePutIsUpsert(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := obligation.NewPostgresStore(pg.DB)
	ctx := context.Background()

	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	inst := obligation.Instance{
		SubjectID: "whatsapp:+5491155550001",
		Kind:      obligation.KindWellness,
		PeriodKey: obligation.DailyKey(day),
		State:     obligation.StateSent,
		Attempt:   1,
		SentAt:    day.Add(19 * time.Hour),
	}
	require.NoError(t, store.Put(ctx, inst))

	inst.State = obligation.StateConfirmed
	inst.Response = "todo bien, gracias"
	require.NoError(t, store.Put(ctx, inst))

	got, err := store.Get(ctx, inst.SubjectID, inst.Kind, inst.PeriodKey)
	require.NoError(t, err)
	assert.Equal(t, obligation.StateConfirmed, got.State)
	assert.Equal(t, "todo bien, gracias", got.Response)
}

func TestPostgresStoreOpenSkipsTerminal(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := obligation.NewPostgresStore(pg.DB)
	ctx := context.Background()

	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	open := obligation.Instance{
		SubjectID: "whatsapp:+5491155550001",
		Kind:      obligation.KindMedication,
		PeriodKey: obligation.QualifiedKey(day, "noche"),
		State:     obligation.StateReminded,
		Attempt:   2,
		SentAt:    day.Add(21 * time.Hour),
	}
	done := obligation.Instance{
		SubjectID: "whatsapp:+5491155550002",
		Kind:      obligation.KindMedication,
		PeriodKey: obligation.QualifiedKey(day, "noche"),
		State:     obligation.StateEscalated,
		Attempt:   3,
		SentAt:    day.Add(21 * time.Hour),
	}
	require.NoError(t, store.Put(ctx, open))
	require.NoError(t, store.Put(ctx, done))

	got, err := store.Open(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "whatsapp:+5491155550001", got[0].SubjectID)
	assert.Equal(t, obligation.StateReminded, got[0].State)
}
