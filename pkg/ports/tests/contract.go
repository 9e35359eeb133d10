package tests

import (
	"context"
	"testing"

	"github.com/aretw0/quest/pkg/ports"
)

// GraphExpectation describes the content a loader under test is expected to produce.
type GraphExpectation struct {
	Initial string
	// Choices maps each scene id to its action ids in declared order.
	Choices map[string][]string
}

// GraphLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.GraphLoader.
func GraphLoaderContractTest(t *testing.T, loader ports.GraphLoader, want GraphExpectation) {
	t.Helper()

	g, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error loading graph: %v", err)
	}

	t.Run("Initial", func(t *testing.T) {
		if g.Initial() != want.Initial {
			t.Errorf("initial scene mismatch. got %q, want %q", g.Initial(), want.Initial)
		}
	})

	t.Run("Scenes", func(t *testing.T) {
		if g.Len() != len(want.Choices) {
			t.Errorf("expected %d scenes, got %d", len(want.Choices), g.Len())
		}
		for id, actions := range want.Choices {
			scene, ok := g.Lookup(id)
			if !ok {
				t.Errorf("scene %s not found", id)
				continue
			}
			if len(scene.Transitions) != len(actions) {
				t.Errorf("scene %s: expected %d choices, got %d", id, len(actions), len(scene.Transitions))
				continue
			}
			for i, action := range actions {
				if scene.Transitions[i].ActionID != action {
					t.Errorf("scene %s choice %d: got %q, want %q", id, i, scene.Transitions[i].ActionID, action)
				}
			}
		}
	})

	t.Run("Lookup_NotFound", func(t *testing.T) {
		if _, ok := g.Lookup("non-existent-scene"); ok {
			t.Error("expected lookup of non-existent scene to fail")
		}
	})
}
