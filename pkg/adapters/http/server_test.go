package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quest"
	questhttp "github.com/aretw0/quest/pkg/adapters/http"
	"github.com/aretw0/quest/pkg/adapters/memory"
	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/service"
	"github.com/aretw0/quest/pkg/session"
)

func newServer(t *testing.T, opts ...questhttp.Option) (http.Handler, *questhttp.StreamManager) {
	t.Helper()
	eng, err := quest.New("", quest.WithClock(func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)

	streams := questhttp.NewStreamManager(nil)
	n := 0
	svc := service.New(eng, session.NewManager(memory.NewStore()),
		service.WithObserver(streams.Observe),
		service.WithKeyGenerator(func() string { n++; return fmt.Sprintf("gen-%d", n) }),
	)
	return questhttp.NewHandler(svc, append([]questhttp.Option{questhttp.WithStreams(streams)}, opts...)...), streams
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestServer_StartAndSubmit(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodPost, "/sessions", `{"key":"ana","display_name":"Ana"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	started := decodeBody[questhttp.TextResponse](t, w)
	assert.Equal(t, "ana", started.Key)
	assert.True(t, strings.HasPrefix(started.Text, "Greetings Ana."))

	w = do(t, h, http.MethodPost, "/sessions/ana/actions", `{"input":"follow_tracks"}`)
	require.Equal(t, http.StatusOK, w.Code)
	res := decodeBody[questhttp.ActionResponse](t, w)
	assert.True(t, res.Matched)
	assert.Equal(t, "follow_tracks", res.Action)
	assert.Equal(t, domain.TierExact, res.Tier)
	assert.Equal(t, started.SessionID, res.SessionID)
	assert.True(t, strings.HasPrefix(res.Text, "You chose 'follow_tracks'."))

	w = do(t, h, http.MethodGet, "/sessions/ana/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	sess := decodeBody[domain.Session](t, w)
	assert.Equal(t, "forest_edge", sess.CurrentSceneID)
	assert.Equal(t, "Ana", sess.SubjectName)
	assert.Len(t, sess.History, 1)
}

func TestServer_StartWithoutBodyGeneratesKey(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "gen-1", decodeBody[questhttp.TextResponse](t, w).Key)
}

func TestServer_NoMatch(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodPost, "/sessions/bob/actions", `{"input":"xyzzy"}`)
	require.Equal(t, http.StatusOK, w.Code)
	res := decodeBody[questhttp.ActionResponse](t, w)
	assert.False(t, res.Matched)
	assert.Empty(t, res.Action)
	assert.Contains(t, res.Text, "Aurek the Game Master tilts his head.")
}

func TestServer_DescribeSummarizeReset(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodGet, "/sessions/cara", "")
	require.Equal(t, http.StatusOK, w.Code)
	first := decodeBody[questhttp.TextResponse](t, w)
	assert.Contains(t, first.Text, "Bells")

	do(t, h, http.MethodPost, "/sessions/cara/actions", `{"input":"go_market"}`)
	do(t, h, http.MethodPost, "/sessions/cara/actions", `{"input":"take_treats"}`)

	w = do(t, h, http.MethodGet, "/sessions/cara/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody[questhttp.TextResponse](t, w)
	assert.Contains(t, summary.Text, "dragon_treats")
	assert.Contains(t, summary.Text, "from market -> market_after_treats via take_treats")

	w = do(t, h, http.MethodPost, "/sessions/cara/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	reset := decodeBody[questhttp.TextResponse](t, w)
	assert.Equal(t, "cara", reset.Key)
	assert.NotEqual(t, first.SessionID, reset.SessionID)
	assert.True(t, strings.HasPrefix(reset.Text, "Time folds like a storybook"))
}

func TestServer_ListAndEnd(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[questhttp.SessionList](t, w).Sessions)

	do(t, h, http.MethodPost, "/sessions", `{"key":"a"}`)
	do(t, h, http.MethodPost, "/sessions", `{"key":"b"}`)
	w = do(t, h, http.MethodGet, "/sessions", "")
	assert.ElementsMatch(t, []string{"a", "b"}, decodeBody[questhttp.SessionList](t, w).Sessions)

	w = do(t, h, http.MethodDelete, "/sessions/a", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodDelete, "/sessions/a", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decodeBody[questhttp.ErrorResponse](t, w).Error, "session not found")

	w = do(t, h, http.MethodGet, "/sessions/a/state", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_RejectsBadRequests(t *testing.T) {
	h, _ := newServer(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"Malformed JSON", "/sessions/k/actions", `{"input":`},
		{"Missing Input", "/sessions/k/actions", `{}`},
		{"Oversized Input", "/sessions/k/actions", fmt.Sprintf(`{"input":%q}`, strings.Repeat("a", 5000))},
		{"Long Display Name", "/sessions", fmt.Sprintf(`{"display_name":%q}`, strings.Repeat("n", 65))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decodeBody[questhttp.ErrorResponse](t, w).Error)
		})
	}
}

func TestServer_Graph(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodGet, "/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[struct {
		Initial string         `json:"initial"`
		Scenes  []domain.Scene `json:"scenes"`
	}](t, w)
	assert.Equal(t, "intro", body.Initial)
	assert.Len(t, body.Scenes, 18)

	do(t, h, http.MethodPost, "/sessions/dan/actions", `{"input":"go_market"}`)
	w = do(t, h, http.MethodGet, "/graph/mermaid?session_key=dan", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph TD\n"))
	assert.Contains(t, w.Body.String(), "class market current")

	w = do(t, h, http.MethodGet, "/graph/mermaid?session_key=nobody", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_InfoHealthSpec(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("quest_up 1\n"))
	})
	h, _ := newServer(t, questhttp.WithMetrics(metrics))

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/info", "")
	info := decodeBody[map[string]string](t, w)
	assert.Equal(t, strings.TrimSpace(quest.Version), info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])

	w = do(t, h, http.MethodGet, "/openapi.yaml", "")
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, "quest_up 1\n", w.Body.String())

	w = do(t, h, http.MethodOptions, "/sessions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetSwagger(t *testing.T) {
	swagger, err := questhttp.GetSwagger()
	require.NoError(t, err)
	require.NoError(t, swagger.Validate(context.Background()))
	assert.NotNil(t, swagger.Paths.Find("/sessions/{key}/actions"))
}

func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var lines []string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			return strings.Join(lines, "\n")
		}
		lines = append(lines, line)
	}
}

func TestServer_SessionEvents(t *testing.T) {
	h, streams := newServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?session_key=eve", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, "event: ping\ndata: connected", readEvent(t, reader))
	assert.Equal(t, 1, streams.Subscribers("eve"))

	post, err := srv.Client().Post(srv.URL+"/sessions/eve/actions", "application/json", strings.NewReader(`{"input":"go_courtyard"}`))
	require.NoError(t, err)
	post.Body.Close()

	// Implicit start, then the transition.
	var diffs []domain.SessionDiff
	for range 2 {
		event := readEvent(t, reader)
		require.True(t, strings.HasPrefix(event, "data: "), event)
		var diff domain.SessionDiff
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(event, "data: ")), &diff))
		diffs = append(diffs, diff)
	}
	require.NotNil(t, diffs[0].CurrentSceneID)
	assert.Equal(t, "intro", *diffs[0].CurrentSceneID)
	require.NotNil(t, diffs[1].CurrentSceneID)
	assert.Equal(t, "courtyard", *diffs[1].CurrentSceneID)
	assert.Len(t, diffs[1].History, 1)
}

func TestServer_ReloadEvents(t *testing.T) {
	reloads := make(chan struct{}, 1)
	watcher := func(ctx context.Context) (<-chan struct{}, error) { return reloads, nil }
	h, _ := newServer(t, questhttp.WithWatcher(watcher))
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, "event: ping\ndata: connected", readEvent(t, reader))
	reloads <- struct{}{}
	assert.Equal(t, "data: reload", readEvent(t, reader))
}

func TestServer_ReloadEventsUnavailable(t *testing.T) {
	h, _ := newServer(t)
	w := do(t, h, http.MethodGet, "/events", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamManager_UnsubscribeIsIdempotent(t *testing.T) {
	sm := questhttp.NewStreamManager(nil)
	ch, cancel := sm.Subscribe("k")
	sm.Broadcast("k", "one")
	assert.Equal(t, "one", <-ch)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, sm.Subscribers("k"))
	sm.Broadcast("k", "dropped")
}
