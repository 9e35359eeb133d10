package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quest"
	"github.com/aretw0/quest/pkg/adapters/memory"
	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/runner"
	"github.com/aretw0/quest/pkg/service"
	"github.com/aretw0/quest/pkg/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng, err := quest.New("", quest.WithClock(func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)
	n := 0
	svc := service.New(eng, session.NewManager(memory.NewStore()),
		service.WithKeyGenerator(func() string { n++; return fmt.Sprintf("adv-%d", n) }),
	)
	return NewServer(svc)
}

func TestServer_Adventure(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	started, err := s.handleStart(ctx, req, StartArgs{PlayerName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "adv-1", started.SessionKey)
	assert.Equal(t, "intro", started.SceneID)
	assert.Equal(t, domain.StatusActive, started.Status)
	assert.True(t, strings.HasPrefix(started.Text, "Greetings Ana."))

	scene, err := s.handleScene(ctx, req, KeyArgs{SessionKey: "adv-1"})
	require.NoError(t, err)
	assert.Equal(t, started.SessionID, scene.SessionID)
	assert.Contains(t, scene.Text, "Choices:\n- Head to the market square to gather rumors. (say: go_market)")

	moved, err := s.handleAction(ctx, req, ActionArgs{SessionKey: "adv-1", Action: "go to the market"})
	require.NoError(t, err)
	require.NotNil(t, moved.Matched)
	assert.True(t, *moved.Matched)
	assert.Equal(t, "go_market", moved.Action)
	assert.Equal(t, "market", moved.SceneID)

	missed, err := s.handleAction(ctx, req, ActionArgs{SessionKey: "adv-1", Action: "xyzzy"})
	require.NoError(t, err)
	require.NotNil(t, missed.Matched)
	assert.False(t, *missed.Matched)
	assert.Equal(t, "market", missed.SceneID)

	journal, err := s.handleJournal(ctx, req, KeyArgs{SessionKey: "adv-1"})
	require.NoError(t, err)
	assert.Contains(t, journal.Text, "Player: Ana")
	assert.Contains(t, journal.Text, "from intro -> market via go_market")

	restarted, err := s.handleRestart(ctx, req, KeyArgs{SessionKey: "adv-1"})
	require.NoError(t, err)
	assert.Equal(t, "adv-1", restarted.SessionKey)
	assert.Equal(t, "intro", restarted.SceneID)
	assert.NotEqual(t, started.SessionID, restarted.SessionID)
}

func TestServer_MissingKey(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleScene(ctx, mcp.CallToolRequest{}, KeyArgs{})
	assert.ErrorContains(t, err, "session_key")
	_, err = s.handleAction(ctx, mcp.CallToolRequest{}, ActionArgs{Action: "go_market"})
	assert.ErrorContains(t, err, "session_key")
}

func TestServer_RejectsOversizedAction(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleAction(context.Background(), mcp.CallToolRequest{}, ActionArgs{
		SessionKey: "k",
		Action:     strings.Repeat("a", runner.DefaultMaxInputSize+1),
	})
	assert.ErrorIs(t, err, runner.ErrInputTooLarge)
}

func TestServer_GraphResource(t *testing.T) {
	s := newTestServer(t)

	contents, err := s.readGraph(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, GraphURI, text.URI)

	var body struct {
		Initial string         `json:"initial"`
		Scenes  []domain.Scene `json:"scenes"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &body))
	assert.Equal(t, "intro", body.Initial)
	assert.Len(t, body.Scenes, 18)
}

func TestServer_RegistersTools(t *testing.T) {
	s := newTestServer(t)

	tools := s.MCPServer().ListTools()
	for _, name := range []string{"start_adventure", "get_scene", "player_action", "show_journal", "restart_adventure"} {
		assert.Contains(t, tools, name)
	}
}
