package quest_test

import (
	"context"
	"fmt"

	"github.com/aretw0/quest"
)

func Example() {
	eng, err := quest.New("")
	if err != nil {
		panic(err)
	}
	ctx := context.Background()

	s, _ := eng.StartSession(ctx, "Ana")
	s, outcome, _, _ := eng.SubmitAction(ctx, s, "go to the market")
	fmt.Println(outcome.ActionID, outcome.Tier, s.CurrentSceneID)

	s, _, _, _ = eng.SubmitAction(ctx, s, "take_treats")
	fmt.Println(s.Inventory, len(s.History))

	// Output:
	// go_market phrase market
	// [dragon_treats] 2
}
