package yaml_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quest/pkg/adapters/yaml"
	"github.com/aretw0/quest/pkg/domain"
	contract "github.com/aretw0/quest/pkg/ports/tests"
)

const world = `
initial: gate
narration:
  greeting: "Hello {name}."
scenes:
  - id: gate
    title: Gate
    description: You stand at the gate.
    choices:
      - id: go_market
        description: Head to the market.
        to: market
        effects:
          - add_journal: Went shopping.
          - add_inventory: coin
          - name_entity: {role: guard, name: Bram}
      - id: stay
        description: Stay put.
        to: gate
  - id: market
    description: Busy stalls.
`

func TestYAMLLoader_Contract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(world), 0644))

	contract.GraphLoaderContractTest(t, yaml.New(path), contract.GraphExpectation{
		Initial: "gate",
		Choices: map[string][]string{
			"gate":   {"go_market", "stay"},
			"market": {},
		},
	})
}

func TestYAMLLoader_EffectsInOrder(t *testing.T) {
	g, err := yaml.NewFromBytes([]byte(world)).Load(context.Background())
	require.NoError(t, err)

	gate, ok := g.Lookup("gate")
	require.True(t, ok)
	assert.Equal(t, []domain.Effect{
		domain.AddJournal("Went shopping."),
		domain.AddInventory("coin"),
		domain.NameEntity("guard", "Bram"),
	}, gate.Transitions[0].Effects)
	assert.Equal(t, "Hello Ana.", g.Narration().Greet("Ana"))
}

func TestYAMLLoader_UnknownEffectWithListArgs(t *testing.T) {
	doc := "scenes:\n  - id: a\n    choices:\n      - id: go\n        to: a\n        effects:\n          - play_sound: [chime, bell]\n          - add_journal: Rang.\n"

	g, err := yaml.NewFromBytes([]byte(doc)).Load(context.Background())
	require.NoError(t, err)

	a, ok := g.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, []domain.Effect{
		{Kind: "play_sound"},
		domain.AddJournal("Rang."),
	}, a.Transitions[0].Effects)
}

func TestYAMLLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		content bool
	}{
		{
			name:    "Dangling Target",
			doc:     "scenes:\n  - id: a\n    choices:\n      - id: go\n        to: nowhere\n",
			content: true,
		},
		{
			name:    "Bad Effect",
			doc:     "scenes:\n  - id: a\n    choices:\n      - id: go\n        to: a\n        effects:\n          - name_entity: Bram\n",
			content: true,
		},
		{
			name: "Unknown Field",
			doc:  "scenes:\n  - id: a\n    colour: red\n",
		},
		{
			name: "Malformed",
			doc:  "scenes: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := yaml.Parse([]byte(tt.doc))
			require.Error(t, err)
			if tt.content {
				assert.ErrorIs(t, err, domain.ErrContent)
			} else {
				assert.NotErrorIs(t, err, domain.ErrContent)
			}
		})
	}
}

func TestYAMLLoader_MissingFile(t *testing.T) {
	_, err := yaml.New(filepath.Join(t.TempDir(), "absent.yaml")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
