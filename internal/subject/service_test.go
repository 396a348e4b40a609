package subject

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/lautaro2705-commits/asistente-personal/pkg/domain-errors"
)

func newTestService() *Service {
	return NewService(NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEnsureCreatesOnce(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	subj, created, err := svc.Ensure(ctx, "+5491100000001")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, RoleIndependent, subj.Role)
	assert.False(t, subj.Features.Wellness)

	_, created, err = svc.Ensure(ctx, "+5491100000001")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSetFeaturePromotesToMonitored(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.SetFeature(ctx, "+549110", FeatureWellness, true))

	subj, err := svc.Get(ctx, "+549110")
	require.NoError(t, err)
	assert.Equal(t, RoleMonitored, subj.Role)
	assert.True(t, subj.Features.Wellness)
	assert.False(t, subj.Features.Hydration)
}

func TestSetFeatureUnknown(t *testing.T) {
	svc := newTestService()

	err := svc.SetFeature(context.Background(), "+549110", "sueño", true)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestChainAddressAppearsAtMostOnce(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.SetPrimaryContact(ctx, "+549110", "Ana", "+549200"))
	require.NoError(t, svc.AddSecondaryContact(ctx, "+549110", "+549300"))

	err := svc.AddSecondaryContact(ctx, "+549110", "+549200")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	err = svc.AddSecondaryContact(ctx, "+549110", "+549300")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestSetPrimaryPromotesExistingSecondary(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.AddSecondaryContact(ctx, "+549110", "+549200"))
	require.NoError(t, svc.SetPrimaryContact(ctx, "+549110", "Ana", "+549200"))

	chain, err := svc.Chain(ctx, "+549110")
	require.NoError(t, err)
	require.NotNil(t, chain.Primary)
	assert.Equal(t, "+549200", chain.Primary.Address)
	assert.Empty(t, chain.Secondaries)
}

func TestContactsOrderPrimaryFirst(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.AddSecondaryContact(ctx, "+549110", "+549300"))
	require.NoError(t, svc.SetPrimaryContact(ctx, "+549110", "Ana", "+549200"))
	require.NoError(t, svc.AddSecondaryContact(ctx, "+549110", "+549400"))

	chain, err := svc.Chain(ctx, "+549110")
	require.NoError(t, err)
	contacts := chain.Contacts()
	require.Len(t, contacts, 3)
	assert.Equal(t, "+549200", contacts[0].Address)
	assert.Equal(t, "+549300", contacts[1].Address)
	assert.Equal(t, "+549400", contacts[2].Address)
}

func TestDeleteContact(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.SetPrimaryContact(ctx, "+549110", "Ana", "+549200"))
	require.NoError(t, svc.AddSecondaryContact(ctx, "+549110", "+549300"))

	require.NoError(t, svc.DeleteContact(ctx, "+549110", "+549200"))
	chain, err := svc.Chain(ctx, "+549110")
	require.NoError(t, err)
	assert.Nil(t, chain.Primary)
	require.Len(t, chain.Secondaries, 1)

	err = svc.DeleteContact(ctx, "+549110", "+549999")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
