package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quest/pkg/adapters/memory"
	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/persistence/middleware"
	"github.com/aretw0/quest/pkg/ports"
)

var epoch = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func sampleSession() *domain.Session {
	s := domain.NewSession("s-1", "Ana", "market", epoch)
	s.Journal = append(s.Journal, "You picked up sweet rolls for the baby dragon.")
	s.Inventory = append(s.Inventory, "dragon_treats")
	s.Entities["steward"] = "Maren"
	s.History = append(s.History, domain.HistoryEntry{From: "intro", Action: "go_market", To: "market", Timestamp: epoch})
	return s
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	original := sampleSession()
	require.NoError(t, secure.Save(ctx, "k", original))

	stored, err := underlying.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "s-1", stored.ID)
	assert.Equal(t, "encrypted", stored.CurrentSceneID)
	assert.Empty(t, stored.SubjectName)
	assert.Empty(t, stored.Journal)
	assert.Empty(t, stored.Inventory)
	assert.Empty(t, stored.History)
	assert.Contains(t, stored.Entities, "__encrypted__")
	assert.NotContains(t, stored.Entities["__encrypted__"], "Maren")

	loaded, err := secure.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, original.ID, loaded.ID)
	assert.Equal(t, original.SubjectName, loaded.SubjectName)
	assert.Equal(t, original.Journal, loaded.Journal)
	assert.Equal(t, original.Inventory, loaded.Inventory)
	assert.Equal(t, original.Entities, loaded.Entities)
	assert.True(t, original.StartedAt.Equal(loaded.StartedAt))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := NewMockStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	require.NoError(t, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying).Save(ctx, "k", sampleSession()))

	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})(underlying)
	loaded, err := rotated.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "market", loaded.CurrentSceneID)

	stranger := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err = stranger.Load(ctx, "k")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_RejectsPlainRecords(t *testing.T) {
	underlying := NewMockStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "k", sampleSession()))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "k")
	assert.Error(t, err)

	_, err = secure.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_ShortKeyPanics(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte(strings.Repeat("k", 16))})
	})
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(memory.NewStore())
	ports.RunSessionStoreContract(t, store)
}
