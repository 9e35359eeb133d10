package ports

import (
	"context"

	"github.com/aretw0/quest/pkg/graph"
)

// GraphLoader defines how hosts obtain the content graph.
// This allows the content source (YAML, Loam, Memory) to be decoupled.
type GraphLoader interface {
	// Load reads and validates the content, returning an immutable graph.
	// Content defects are reported as *domain.ContentError.
	Load(ctx context.Context) (*graph.Graph, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying content changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
