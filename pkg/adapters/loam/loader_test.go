package loam

import (
	"context"
	"testing"

	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quest/internal/testutils"
	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/ports/tests"
)

var worldFiles = map[string]string{
	"gate.md": `---
id: gate
title: The Gate
initial: true
narration:
  greeting: "Welcome, {name}."
  prompt: "Your move?"
choices:
  - id: go_market
    description: Head to the market.
    to: market
    effects:
      - add_journal: Went to the market.
      - add_inventory: coin
  - id: wait
    description: Wait by the gate.
    to: gate
---
You stand by the cobblestone gate.`,
	"market.md": `---
title: Market
choices:
  - id: back
    description: Return to the gate.
    to: gate.md
---
Stalls everywhere.`,
}

func TestLoader_Contract(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t, worldFiles)

	loader := New(loam.NewTypedRepository[SceneMetadata](repo))

	tests.GraphLoaderContractTest(t, loader, tests.GraphExpectation{
		Initial: "gate",
		Choices: map[string][]string{
			"gate":   {"go_market", "wait"},
			"market": {"back"},
		},
	})
}

func TestLoader_ScenesFromDocuments(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t, worldFiles)

	g, err := New(loam.NewTypedRepository[SceneMetadata](repo)).Load(context.Background())
	require.NoError(t, err)

	gate, ok := g.Lookup("gate")
	require.True(t, ok)
	assert.Equal(t, "The Gate", gate.Title)
	assert.Equal(t, "You stand by the cobblestone gate.", gate.Description)
	assert.Equal(t, []domain.Effect{
		domain.AddJournal("Went to the market."),
		domain.AddInventory("coin"),
	}, gate.Transitions[0].Effects)

	market, ok := g.Lookup("market")
	require.True(t, ok)
	assert.Equal(t, "gate", market.Transitions[0].Target, "extension in target should be trimmed")

	assert.Equal(t, "Your move?", g.Narration().Prompt)
	assert.Equal(t, "Welcome, Ana.", g.Narration().Greet("Ana"))
}

func TestLoader_DetectsCollisions(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t, map[string]string{
		"foo.md": "---\nid: foo\n---\nExplicit ID",
		"bar.md": "---\nid: foo\n---\nSame ID",
	})

	_, err := New(loam.NewTypedRepository[SceneMetadata](repo)).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestLoader_DanglingTarget(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t, map[string]string{
		"start.md": "---\nchoices:\n  - id: go\n    description: Go.\n    to: nowhere\n---\nStart",
	})

	_, err := New(loam.NewTypedRepository[SceneMetadata](repo)).Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrContent)
}

func TestLoader_InitialOption(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t, map[string]string{
		"a.md": "---\nid: a\n---\nA",
		"b.md": "---\nid: b\n---\nB",
	})

	g, err := New(loam.NewTypedRepository[SceneMetadata](repo), WithInitial("b")).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", g.Initial())
}
