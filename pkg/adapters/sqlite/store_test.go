package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/ports"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "quest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, openTestStore(t))
}

func TestSQLiteStore_OpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestSQLiteStore_MirrorsColumns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	session := domain.NewSession("sess-9", "", "forest_edge", time.Now())
	require.NoError(t, store.Save(ctx, "k", session))

	var sceneID, status string
	err := store.sqlDB.QueryRowContext(ctx,
		`SELECT current_scene_id, status FROM sessions WHERE session_key = ?`, "k",
	).Scan(&sceneID, &status)
	require.NoError(t, err)
	assert.Equal(t, "forest_edge", sceneID)
	assert.Equal(t, "active", status)
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quest.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "k", domain.NewSession("sess-1", "Ana", "intro", time.Now())))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "Ana", loaded.SubjectName)
}
