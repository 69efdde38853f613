package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/totem/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	t.Helper()

	ctx := context.Background()
	userID := "contract-test-user-" + time.Now().Format("20060102150405")
	started := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(userID, started)
		session.CurrentIndex = 2
		session.Traits = []string{"слон", "манул"}

		err := store.Save(ctx, userID, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, userID, loaded.UserID)
		assert.Equal(t, 2, loaded.CurrentIndex)
		assert.Equal(t, []string{"слон", "манул"}, loaded.Traits, "trait order must be preserved")
		assert.True(t, started.Equal(loaded.StartedAt), "StartedAt should round-trip")
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		err := store.Save(ctx, userID, domain.NewSession(userID, started))
		require.NoError(t, err)

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, loaded.CurrentIndex)
		assert.Empty(t, loaded.Traits)
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		session := domain.NewSession(userID, started)
		session.Traits = []string{"енот"}
		require.NoError(t, store.Save(ctx, userID, session))

		// Mutating the saved value or a loaded copy must not leak into the store.
		session.Traits[0] = "фламинго"
		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		loaded.Traits = append(loaded.Traits, "манул")

		again, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, []string{"енот"}, again.Traits)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+userID)
		assert.ErrorIs(t, err, domain.ErrUnknownSession)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, userID, domain.NewSession(userID, started))
		require.NoError(t, err)

		err = store.Delete(ctx, userID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrUnknownSession, "Load after Delete should return ErrUnknownSession")
	})

	t.Run("List", func(t *testing.T) {
		id1 := userID + "-1"
		id2 := userID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1, started))
		_ = store.Save(ctx, id2, domain.NewSession(id2, started))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
