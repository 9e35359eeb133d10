package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/graph"
)

// Loader implements ports.GraphLoader over scenes declared in Go.
type Loader struct {
	initial   string
	narration graph.Narration
	scenes    []domain.Scene
}

// NewLoader creates a loader for the given scenes. Sessions start at initial.
// This is mostly useful for tests and embedded scenarios.
func NewLoader(initial string, scenes ...domain.Scene) *Loader {
	return &Loader{
		initial: initial,
		scenes:  scenes,
	}
}

// WithNarration sets the fixed strings of the world.
func (l *Loader) WithNarration(n graph.Narration) *Loader {
	l.narration = n
	return l
}

// Load builds and validates the graph.
func (l *Loader) Load(ctx context.Context) (*graph.Graph, error) {
	b := graph.New(l.initial).Narration(l.narration)
	for _, s := range l.scenes {
		b.Add(s)
	}
	g, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build memory graph: %w", err)
	}
	return g, nil
}
