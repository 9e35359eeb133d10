package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quest/pkg/domain"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession("sess-1", "Ana", "market", started)
		session.History = append(session.History, domain.HistoryEntry{
			From: "intro", Action: "go_market", To: "market", Timestamp: started.Add(time.Minute),
		})
		session.Journal = append(session.Journal, "You picked up sweet rolls for the baby dragon.")
		session.Inventory = append(session.Inventory, "dragon_treats", "dragon_treats")
		session.Entities["steward"] = "Maren"

		err := store.Save(ctx, key, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, session.ID, loaded.ID)
		assert.Equal(t, session.SubjectName, loaded.SubjectName)
		assert.Equal(t, session.CurrentSceneID, loaded.CurrentSceneID)
		assert.Equal(t, session.Status, loaded.Status)
		assert.True(t, session.StartedAt.Equal(loaded.StartedAt))
		assert.Equal(t, session.Journal, loaded.Journal)
		assert.Equal(t, session.Inventory, loaded.Inventory)
		assert.Equal(t, session.Entities, loaded.Entities)
		require.Len(t, loaded.History, 1)
		assert.Equal(t, "go_market", loaded.History[0].Action)
		assert.True(t, session.History[0].Timestamp.Equal(loaded.History[0].Timestamp))
	})

	t.Run("Overwrite", func(t *testing.T) {
		replacement := domain.NewSession("sess-2", "Ana", "intro", started)
		require.NoError(t, store.Save(ctx, key, replacement))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "sess-2", loaded.ID)
		assert.Empty(t, loaded.History)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, key, domain.NewSession("sess-3", "", "intro", started))
		require.NoError(t, err)

		err = store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		key1 := key + "-1"
		key2 := key + "-2"
		_ = store.Save(ctx, key1, domain.NewSession("a", "", "intro", started))
		_ = store.Save(ctx, key2, domain.NewSession("b", "", "intro", started))

		defer func() {
			_ = store.Delete(ctx, key1)
			_ = store.Delete(ctx, key2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, key1)
		assert.Contains(t, keys, key2)
	})
}
