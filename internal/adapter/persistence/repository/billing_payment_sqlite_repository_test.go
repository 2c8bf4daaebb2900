package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/infrastructure/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayment(id string, at time.Time) entities.BillingPayment {
	return entities.BillingPayment{
		ID:               id,
		BudgetID:         "b-1",
		BudgetNumber:     "2026-003",
		Amount:           decimal.RequireFromString("1540.75"),
		Method:           "pix",
		Status:           entities.PaymentStatusApproved,
		ProviderStatus:   "approved",
		Date:             at,
		ProviderResponse: []byte(`{"id":123,"status":"approved"}`),
	}
}

func TestBillingPaymentSQLiteRepository(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "marcenaria.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := NewBillingPaymentSQLiteRepository(db)
	at := time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC)

	_, err = repo.Create(ctx, newPayment("p-2", at))
	require.NoError(t, err)
	sim := newPayment("p-1", at.Add(-time.Hour))
	sim.Simulated = true
	sim.ProviderResponse = nil
	_, err = repo.Create(ctx, sim)
	require.NoError(t, err)

	_, err = repo.Create(ctx, newPayment("p-2", at))
	assert.ErrorIs(t, err, ErrDuplicatePayment)

	got, err := repo.GetByID(ctx, "p-2")
	require.NoError(t, err)
	assert.Equal(t, "2026-003", got.BudgetNumber)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("1540.75")))
	assert.Equal(t, "pix", got.Method)
	assert.False(t, got.Simulated)
	assert.True(t, got.Date.Equal(at))
	assert.JSONEq(t, `{"id":123,"status":"approved"}`, string(got.ProviderResponse))

	list, err := repo.ListByBudgetID(ctx, "b-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p-1", list[0].ID)
	assert.True(t, list[0].Simulated)
	assert.Nil(t, list[0].ProviderResponse)

	none, err := repo.ListByBudgetID(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, missing.ID)
}
