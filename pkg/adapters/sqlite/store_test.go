package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/totem/pkg/adapters/sqlite"
	"github.com/aretw0/totem/pkg/domain"
	"github.com/aretw0/totem/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, newTestStore(t))
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)

	s := domain.NewSession("u1", time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))
	s.CurrentIndex = 1
	s.Traits = []string{"енот"}
	require.NoError(t, store.Save(ctx, "u1", s))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.CurrentIndex)
	assert.Equal(t, []string{"енот"}, loaded.Traits)
}

func TestSQLiteStore_DeleteMissing(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Delete(context.Background(), "nobody"))
}
