package runtime

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/graph"
)

var epoch = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

// testWorld is a small gate/market/forest graph.
func testWorld(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.New("intro").Narration(graph.Narration{
		Greeting:      "Greetings {name}.",
		ResetGreeting: "Time folds.",
		Clarification: "Say again?",
	})

	b.Scene("intro").
		Describe("You stand at the gate.").
		Choice("go_market", "Head to the market.", "market").
		Choice("follow_tracks", "Follow the glowing prints.", "forest", domain.AddJournal("Tracks lead to the forest."))

	b.Scene("market").
		Describe("Stalls everywhere.").
		Choice("take_treats", "Take a few sweet rolls.", "market_after",
			domain.AddJournal("You picked up sweet rolls."),
			domain.AddInventory("dragon_treats"),
			domain.NameEntity("baker", "Odo"),
			domain.Effect{Kind: "ring_bell", Value: "loud"},
		).
		Choice("return_gate", "Return to the gate.", "intro")

	b.Scene("market_after").
		Describe("Your pack smells of bread.").
		Choice("take_treats", "Take even more rolls.", "market_after",
			domain.AddInventory("dragon_treats"),
			domain.NameEntity("baker", "Someone Else"),
		).
		Choice("return_gate", "Return to the gate.", "intro")

	b.Scene("forest").Describe("Dark trees.")

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

// stepClock returns a clock that advances one minute per call.
func stepClock() func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return epoch.Add(time.Duration(n-1) * time.Minute)
	}
}

// seqIDs returns an id generator yielding prefix-1, prefix-2, ...
func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	base := []EngineOption{WithClock(stepClock()), WithIDGenerator(seqIDs("sess"))}
	return NewEngine(testWorld(t), append(base, opts...)...)
}
