package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miguelangat/dividela/internal/model"
)

// createTestStorage opens a migrated database in a temporary directory.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// createTestExpenses builds count expenses for accountID, one hour apart.
func createTestExpenses(accountID string, count int) []model.Expense {
	categories := []model.Category{model.CategoryGroceries, model.CategoryFood, model.CategoryTransport}
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	expenses := make([]model.Expense, count)
	for i := range expenses {
		expenses[i] = model.Expense{
			ID:          fmt.Sprintf("%s-%02d", accountID, i+1),
			AccountID:   accountID,
			Merchant:    fmt.Sprintf("Merchant #%d", i%3+1),
			Category:    categories[i%len(categories)],
			Description: fmt.Sprintf("expense %d", i+1),
			Amount:      float64(i+1) * 10.5,
			Date:        base.Add(time.Duration(i) * time.Hour),
		}
	}
	return expenses
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates missing directories", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		assert.Equal(t, dbPath, store.Path())
		assert.FileExists(t, dbPath)
	})

	t.Run("in memory", func(t *testing.T) {
		store, err := NewSQLiteStorage(":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Migrate(context.Background()))
		count, err := store.CountExpenses(context.Background(), "acc")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}
