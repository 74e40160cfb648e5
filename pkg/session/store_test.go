package session

import (
	"context"
	"testing"
	"time"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	state := NewState(models.NewWizardSession("session-1"))
	state.StepFields(models.StepBasicInformation)["subject"] = "Laptops"
	state.Items = []models.LineItem{{
		LocalID:   "local-1",
		Quantity:  decimal.NewFromInt(2),
		UnitPrice: decimal.NewFromInt(500),
		Amount:    decimal.NewFromInt(1000),
	}}
	state.MarkDirty(models.SectionBasic)

	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Get(ctx, "session-1")
	require.NoError(t, err)

	assert.Equal(t, "Laptops", loaded.Fields[models.StepBasicInformation]["subject"])
	assert.True(t, loaded.Dirty[models.SectionBasic])
	require.Len(t, loaded.Items, 1)
	assert.True(t, loaded.Items[0].Amount.Equal(decimal.NewFromInt(1000)))
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	state := NewState(models.NewWizardSession("session-1"))
	require.NoError(t, store.Save(ctx, state))

	first, err := store.Get(ctx, "session-1")
	require.NoError(t, err)

	first.StepFields(models.StepBasicInformation)["subject"] = "mutated"

	second, err := store.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Empty(t, second.Fields[models.StepBasicInformation]["subject"])
}

func TestMemoryStore_MissingSession(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "nope")

	assert.True(t, IsSessionNotFound(err))
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, NewState(models.NewWizardSession("session-1"))))
	require.NoError(t, store.Delete(ctx, "session-1"))

	_, err := store.Get(ctx, "session-1")
	assert.True(t, IsSessionNotFound(err))
}

func TestMemoryStore_SweepExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now()
	store.now = func() time.Time { return now }

	stale := NewState(models.NewWizardSession("stale"))
	stale.Session.UpdatedAt = now.Add(-2 * time.Hour)
	require.NoError(t, store.Save(ctx, stale))

	fresh := NewState(models.NewWizardSession("fresh"))
	fresh.Session.UpdatedAt = now
	require.NoError(t, store.Save(ctx, fresh))

	assert.Equal(t, 1, store.SweepExpired(time.Hour))

	_, err := store.Get(ctx, "stale")
	assert.True(t, IsSessionNotFound(err))

	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestState_DirtyFlags(t *testing.T) {
	state := NewState(models.NewWizardSession("session-1"))

	state.MarkDirty(models.SectionItems)
	assert.True(t, state.Dirty[models.SectionItems])

	state.MarkSaved(models.SectionItems)
	assert.NotContains(t, state.Dirty, models.SectionItems)
}
