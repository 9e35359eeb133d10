package ports

import (
	"context"

	"github.com/aretw0/quest/pkg/domain"
)

// SessionStore defines the interface for persisting session records.
// Records are stored under the conversation key, which outlives the session id across resets.
type SessionStore interface {
	// Save persists the session for a given key.
	Save(ctx context.Context, key string, session *domain.Session) error

	// Load retrieves the session for a given key.
	// Returns domain.ErrSessionNotFound if the key does not exist.
	Load(ctx context.Context, key string) (*domain.Session, error)

	// Delete removes the session for a given key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all stored keys.
	List(ctx context.Context) ([]string, error)
}
