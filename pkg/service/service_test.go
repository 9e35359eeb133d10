package service_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quest"
	"github.com/aretw0/quest/pkg/adapters/memory"
	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/persistence/middleware"
	"github.com/aretw0/quest/pkg/runner"
	"github.com/aretw0/quest/pkg/service"
	"github.com/aretw0/quest/pkg/session"
)

type change struct {
	key       string
	old, next *domain.Session
}

func newService(t *testing.T, opts ...service.Option) (*service.Service, *memory.Store, *[]change) {
	t.Helper()
	eng, err := quest.New("", quest.WithClock(func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)

	store := memory.NewStore()
	var mu sync.Mutex
	changes := &[]change{}
	observer := func(ctx context.Context, key string, old, next *domain.Session) {
		mu.Lock()
		defer mu.Unlock()
		*changes = append(*changes, change{key, old, next})
	}

	n := 0
	base := []service.Option{
		service.WithObserver(observer),
		service.WithKeyGenerator(func() string { n++; return fmt.Sprintf("key-%d", n) }),
	}
	return service.New(eng, session.NewManager(store), append(base, opts...)...), store, changes
}

func TestService_StartGeneratesKey(t *testing.T) {
	svc, store, changes := newService(t)
	ctx := context.Background()

	res, err := svc.Start(ctx, "", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "key-1", res.Key)
	assert.True(t, strings.HasPrefix(res.Text, "Greetings Ana."))
	assert.Nil(t, res.Previous)

	stored, err := store.Load(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, stored.ID)
	require.Len(t, *changes, 1)
	assert.Nil(t, (*changes)[0].old)
}

func TestService_SubmitPersists(t *testing.T) {
	svc, store, changes := newService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "ana", "Ana")
	require.NoError(t, err)

	res, err := svc.Submit(ctx, "ana", "go_market")
	require.NoError(t, err)
	require.NotNil(t, res.Outcome)
	assert.True(t, res.Outcome.Matched)
	assert.Equal(t, "intro", res.Previous.CurrentSceneID)

	res, err = svc.Submit(ctx, "ana", "take treats")
	require.NoError(t, err)
	assert.Equal(t, "market_after_treats", res.Session.CurrentSceneID)

	stored, err := store.Load(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"dragon_treats"}, stored.Inventory)
	assert.Len(t, stored.History, 2)
	assert.Len(t, *changes, 3)
}

func TestService_NoMatchDoesNotSave(t *testing.T) {
	svc, store, changes := newService(t)
	ctx := context.Background()
	_, err := svc.Start(ctx, "ana", "")
	require.NoError(t, err)
	before, err := store.Load(ctx, "ana")
	require.NoError(t, err)

	res, err := svc.Submit(ctx, "ana", "xyzzy")
	require.NoError(t, err)
	assert.False(t, res.Outcome.Matched)
	assert.Len(t, *changes, 1, "no-match is not a change")

	after, err := store.Load(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestService_SubmitRecoversLostScene(t *testing.T) {
	svc, store, changes := newService(t)
	ctx := context.Background()
	_, err := svc.Start(ctx, "ana", "Ana")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "ana", "go_market")
	require.NoError(t, err)

	lost, err := store.Load(ctx, "ana")
	require.NoError(t, err)
	lost.CurrentSceneID = "removed_scene"
	require.NoError(t, store.Save(ctx, "ana", lost))

	res, err := svc.Submit(ctx, "ana", "follow_tracks")
	require.NoError(t, err)
	assert.False(t, res.Outcome.Matched)
	assert.True(t, res.Outcome.Recovered)
	assert.True(t, strings.HasPrefix(res.Text, "The story lost its place for a moment"))
	assert.Len(t, *changes, 3)

	stored, err := store.Load(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "intro", stored.CurrentSceneID)
	assert.Len(t, stored.History, 1, "recovery is not a choice")

	res, err = svc.Submit(ctx, "ana", "follow_tracks")
	require.NoError(t, err)
	assert.True(t, res.Outcome.Matched)
	assert.Equal(t, "forest_edge", res.Session.CurrentSceneID)
}

func TestService_UnknownKeyStartsImplicitly(t *testing.T) {
	svc, _, changes := newService(t)
	ctx := context.Background()

	res, err := svc.Describe(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "intro", res.Session.CurrentSceneID)
	assert.True(t, strings.HasPrefix(res.Text, "Greetings traveler."), "implicit start carries the greeting")

	res, err = svc.Describe(ctx, "fresh")
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(res.Text, "Greetings"))

	res, err = svc.Submit(ctx, "other", "follow_tracks")
	require.NoError(t, err)
	assert.Equal(t, "forest_edge", res.Session.CurrentSceneID)

	res, err = svc.Summarize(ctx, "third")
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Journal is empty so far.")

	assert.Len(t, *changes, 4)
}

func TestService_ResetKeepsKeyAndName(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	start, err := svc.Start(ctx, "ana", "Ana")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "ana", "go_market")
	require.NoError(t, err)

	res, err := svc.Reset(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", res.Key)
	assert.NotEqual(t, start.Session.ID, res.Session.ID)
	assert.Equal(t, "Ana", res.Session.SubjectName)
	assert.Equal(t, "intro", res.Session.CurrentSceneID)
	assert.True(t, strings.HasPrefix(res.Text, "Time folds"))

	res, err = svc.Reset(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, "intro", res.Session.CurrentSceneID)
}

func TestService_ResetBehindPIIMasking(t *testing.T) {
	eng, err := quest.New("")
	require.NoError(t, err)
	store := middleware.Chain(memory.NewStore(), middleware.NewPIIMiddleware([]string{"^player$"}))
	svc := service.New(eng, session.NewManager(store))
	ctx := context.Background()

	_, err = svc.Start(ctx, "ana", "Alice")
	require.NoError(t, err)

	res, err := svc.Reset(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, res.Session.SubjectName, "the masked name is not taken as the player's name")

	res, err = svc.Summarize(ctx, "ana")
	require.NoError(t, err)
	assert.NotContains(t, res.Text, domain.Redacted)
}

func TestService_InspectListEnd(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Inspect(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, svc.End(ctx, "nobody"), domain.ErrSessionNotFound)

	_, err = svc.Start(ctx, "b", "")
	require.NoError(t, err)
	_, err = svc.Start(ctx, "a", "")
	require.NoError(t, err)

	keys, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	s, err := svc.Inspect(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "intro", s.CurrentSceneID)

	require.NoError(t, svc.End(ctx, "a"))
	keys, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)
}

func TestService_SanitizesInput(t *testing.T) {
	svc, _, _ := newService(t, service.WithSanitizer(runner.NewSanitizer(12)))
	ctx := context.Background()

	_, err := svc.Submit(ctx, "ana", strings.Repeat("x", 13))
	assert.ErrorIs(t, err, runner.ErrInputTooLarge)

	_, err = svc.Submit(ctx, "ana", "bad \xff")
	assert.ErrorIs(t, err, runner.ErrInvalidUTF8)

	res, err := svc.Submit(ctx, "ana", "go\x07_market")
	require.NoError(t, err)
	assert.Equal(t, "go_market", res.Outcome.ActionID)
	assert.Equal(t, domain.TierExact, res.Outcome.Tier)
}

func TestService_ConcurrentSubmitsOnOneKey(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Start(ctx, "shared", "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Matches a choice in every scene of the intro/market loop.
			_, err := svc.Submit(ctx, "shared", "go_market return_gate")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := store.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, stored.History, 20, "every submit is applied exactly once")
}
