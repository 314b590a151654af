package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miguelangat/dividela/internal/model"
)

func TestSaveExpenses(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	expenses := createTestExpenses("acc1", 5)
	n, err := store.SaveExpenses(ctx, expenses)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// Same IDs again are skipped.
	n, err = store.SaveExpenses(ctx, expenses[:2])
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := store.ListExpenses(ctx, "acc1", 0)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i := range got {
		assert.Equal(t, expenses[i].ID, got[i].ID)
		assert.Equal(t, expenses[i].Merchant, got[i].Merchant)
		assert.Equal(t, expenses[i].Category, got[i].Category)
		assert.Equal(t, expenses[i].Amount, got[i].Amount)
		assert.True(t, expenses[i].Date.Equal(got[i].Date), "date %d", i)
	}
}

func TestSaveExpenses_GeneratesIDsAndDates(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	before := time.Now().Add(-time.Minute)
	n, err := store.SaveExpenses(ctx, []model.Expense{
		{AccountID: "acc", Merchant: " Whole Foods ", Category: model.CategoryGroceries, Amount: 52.1},
		{AccountID: "acc", Merchant: "Whole Foods", Category: model.CategoryGroceries, Amount: 40},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := store.ListExpenses(ctx, "acc", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, e := range got {
		_, parseErr := uuid.Parse(e.ID)
		assert.NoError(t, parseErr)
		assert.Equal(t, "Whole Foods", e.Merchant)
		assert.True(t, e.Date.After(before))
	}
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestSaveExpenses_InvalidBatchWritesNothing(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	batch := createTestExpenses("acc", 3)
	batch[2].Category = model.CategoryNone

	_, err := store.SaveExpenses(ctx, batch)
	require.ErrorIs(t, err, ErrInvalidExpense)

	count, err := store.CountExpenses(ctx, "acc")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetHistory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.SaveExpenses(ctx, createTestExpenses("acc1", 4))
	require.NoError(t, err)
	_, err = store.SaveExpenses(ctx, createTestExpenses("acc2", 2))
	require.NoError(t, err)

	history, err := store.GetHistory(ctx, "acc1")
	require.NoError(t, err)
	assert.Equal(t, []model.HistoricalExpense{
		{Merchant: "Merchant #1", Category: model.CategoryGroceries, Description: "expense 1", Amount: 10.5},
		{Merchant: "Merchant #2", Category: model.CategoryFood, Description: "expense 2", Amount: 21},
		{Merchant: "Merchant #3", Category: model.CategoryTransport, Description: "expense 3", Amount: 31.5},
		{Merchant: "Merchant #1", Category: model.CategoryGroceries, Description: "expense 4", Amount: 42},
	}, history)

	empty, err := store.GetHistory(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestListExpenses_OrderAndLimit(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	expenses := createTestExpenses("acc", 4)
	// Insert newest first; listing is still oldest first.
	_, err := store.SaveExpenses(ctx, []model.Expense{expenses[3], expenses[1], expenses[0], expenses[2]})
	require.NoError(t, err)

	got, err := store.ListExpenses(ctx, "acc", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, expenses[0].ID, got[0].ID)
	assert.Equal(t, expenses[1].ID, got[1].ID)

	_, err = store.ListExpenses(ctx, "acc", -1)
	assert.ErrorIs(t, err, ErrInvalidPageSize)

	_, err = store.ListExpenses(ctx, "", 0)
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestDeleteAccountExpenses(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.SaveExpenses(ctx, createTestExpenses("acc1", 3))
	require.NoError(t, err)
	_, err = store.SaveExpenses(ctx, createTestExpenses("acc2", 1))
	require.NoError(t, err)

	n, err := store.DeleteAccountExpenses(ctx, "acc1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := store.CountExpenses(ctx, "acc2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
