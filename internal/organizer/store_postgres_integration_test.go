//go:build integration

package organizer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lautaro2705-commits/asistente-personal/internal/organizer"
	"github.com/lautaro2705-commits/asistente-personal/pkg/testutil/containers"
)

func TestPostgresTaskLifecycle(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	stores := organizer.NewPostgresStores(pg.DB)
	svc := organizer.NewService(stores.Tasks, stores.Notes, stores.Shopping, stores.Expenses, stores.Locations)
	ctx := context.Background()

	const subjectID = "whatsapp:+5491155550001"

	first, err := svc.AddTask(ctx, subjectID, "comprar remedios")
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)

	second, err := svc.AddTask(ctx, subjectID, "llamar al médico")
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	require.NoError(t, svc.CompleteTask(ctx, subjectID, 1))

	pending, err := svc.PendingTasks(ctx, subjectID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "llamar al médico", pending[0].Text)

	// Deleting renumbers: the remaining task becomes id 1 again.
	require.NoError(t, svc.DeleteTask(ctx, subjectID, 1))
	pending, err = svc.PendingTasks(ctx, subjectID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].ID)
	assert.Equal(t, "llamar al médico", pending[0].Text)
}

func TestPostgresLocationUpsert(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	stores := organizer.NewPostgresStores(pg.DB)
	ctx := context.Background()

	const subjectID = "whatsapp:+5491155550001"

	city, err := stores.Locations.Get(ctx, subjectID)
	require.NoError(t, err)
	assert.Empty(t, city)

	require.NoError(t, stores.Locations.Set(ctx, subjectID, "Rosario"))
	require.NoError(t, stores.Locations.Set(ctx, subjectID, "Mendoza"))

	city, err = stores.Locations.Get(ctx, subjectID)
	require.NoError(t, err)
	assert.Equal(t, "Mendoza", city)
}

func TestPostgresStoresIsolateSubjects(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	stores := organizer.NewPostgresStores(pg.DB)
	svc := organizer.NewService(stores.Tasks, stores.Notes, stores.Shopping, stores.Expenses, stores.Locations)
	ctx := context.Background()

	_, err := svc.AddShoppingItem(ctx, "whatsapp:+5491155550001", "pan")
	require.NoError(t, err)
	_, err = svc.AddShoppingItem(ctx, "whatsapp:+5491155550002", "leche")
	require.NoError(t, err)

	list, err := svc.ShoppingList(ctx, "whatsapp:+5491155550001")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "pan", list[0].Item)
}
