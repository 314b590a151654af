package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, store.Migrate(ctx))
	version, err = store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	_, err = store.SaveExpenses(ctx, createTestExpenses("acc", 2))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening and migrating again keeps data and version.
	store, err = NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(ctx))
	count, err := store.CountExpenses(ctx, "acc")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMigrationsAreOrdered(t *testing.T) {
	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version, "migration %q", m.Description)
		assert.NotNil(t, m.Up)
	}
	assert.Equal(t, ExpectedSchemaVersion, migrations[len(migrations)-1].Version)
}

func TestMigrate_NilContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // nil context is the case under test
	err := store.Migrate(nil)
	assert.ErrorIs(t, err, ErrNilContext)
}
