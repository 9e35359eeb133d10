package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/aretw0/quest"
	"github.com/aretw0/quest/internal/logging"
	"github.com/aretw0/quest/internal/presentation/graph"
	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/runner"
	"github.com/aretw0/quest/pkg/service"
)

// Watcher signals content reloads. Engine.Watch satisfies it.
type Watcher func(ctx context.Context) (<-chan struct{}, error)

// Server serves the session operations over HTTP.
type Server struct {
	Service *service.Service
	Streams *StreamManager
	Metrics http.Handler
	Watch   Watcher
	Logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStreams shares a StreamManager, typically one also registered as a service observer.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics mounts h under /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithWatcher enables content reload events on /events without a session key.
func WithWatcher(w Watcher) Option {
	return func(s *Server) {
		s.Watch = w
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.Logger = l
		}
	}
}

// NewHandler creates the HTTP handler for svc.
func NewHandler(svc *service.Service, opts ...Option) http.Handler {
	s := &Server{Service: svc, Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.Logger)
	}
	return s.Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.StartSession)
		r.Route("/{key}", func(r chi.Router) {
			r.Get("/", s.DescribeSession)
			r.Delete("/", s.EndSession)
			r.Post("/actions", s.SubmitAction)
			r.Get("/summary", s.SummarizeSession)
			r.Post("/reset", s.ResetSession)
			r.Get("/state", s.InspectSession)
		})
	})
	r.Get("/graph", s.GetGraph)
	r.Get("/graph/mermaid", s.GetGraphMermaid)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <title>Quest API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
        window.ui = SwaggerUIBundle({ url: '/openapi.yaml', dom_id: '#swagger-ui' });
    };
</script>
</body>
</html>
`

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	keys, err := s.Service.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	s.respond(w, http.StatusOK, SessionList{Sessions: keys})
}

// StartSession handles POST /sessions. An empty body starts a session under a generated key.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if r.ContentLength != 0 {
		if err := decode(r, &body); err != nil {
			s.fail(w, err)
			return
		}
	}
	res, err := s.Service.Start(r.Context(), body.Key, body.DisplayName)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusCreated, textResponse(res))
}

// DescribeSession handles GET /sessions/{key}.
func (s *Server) DescribeSession(w http.ResponseWriter, r *http.Request) {
	res, err := s.Service.Describe(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, textResponse(res))
}

// SubmitAction handles POST /sessions/{key}/actions.
func (s *Server) SubmitAction(w http.ResponseWriter, r *http.Request) {
	var body ActionRequest
	if err := decode(r, &body); err != nil {
		s.fail(w, err)
		return
	}
	res, err := s.Service.Submit(r.Context(), chi.URLParam(r, "key"), body.Input)
	if err != nil {
		s.fail(w, err)
		return
	}
	resp := ActionResponse{TextResponse: textResponse(res)}
	if res.Outcome != nil {
		resp.Matched = res.Outcome.Matched
		resp.Recovered = res.Outcome.Recovered
		resp.Action = res.Outcome.ActionID
		resp.Tier = res.Outcome.Tier
	}
	s.respond(w, http.StatusOK, resp)
}

// SummarizeSession handles GET /sessions/{key}/summary.
func (s *Server) SummarizeSession(w http.ResponseWriter, r *http.Request) {
	res, err := s.Service.Summarize(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, textResponse(res))
}

// ResetSession handles POST /sessions/{key}/reset.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	res, err := s.Service.Reset(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, textResponse(res))
}

// InspectSession handles GET /sessions/{key}/state.
func (s *Server) InspectSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Service.Inspect(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, http.StatusOK, sess)
}

// EndSession handles DELETE /sessions/{key}.
func (s *Server) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Service.End(r.Context(), chi.URLParam(r, "key")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g := s.Service.Engine().Graph()
	s.respond(w, http.StatusOK, map[string]any{
		"initial": g.Initial(),
		"scenes":  g.Scenes(),
	})
}

// GetGraphMermaid handles GET /graph/mermaid. With session_key the session's path is highlighted.
func (s *Server) GetGraphMermaid(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.GraphOverlay
	if key := r.URL.Query().Get("session_key"); key != "" {
		sess, err := s.Service.Inspect(r.Context(), key)
		if err != nil {
			s.fail(w, err)
			return
		}
		overlay = graph.OverlayFor(sess)
	}
	g := s.Service.Engine().Graph()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(g.Scenes(), g.Initial(), overlay)))
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	s.respond(w, http.StatusOK, map[string]string{
		"app":         "quest-http",
		"version":     strings.TrimSpace(quest.Version),
		"api_version": apiVersion,
	})
}

// SubscribeEvents handles GET /events (SSE).
// With session_key it streams session diffs; without it, content reloads.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.Logger.Error("streaming not supported")
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	key := r.URL.Query().Get("session_key")
	var events <-chan string
	if key == "" {
		if s.Watch == nil {
			s.writeError(w, http.StatusNotFound, "content reload events are not available")
			return
		}
		reloads, err := s.Watch(r.Context())
		if err != nil {
			s.Logger.Error("failed to watch content", "err", err)
			s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("watch error: %v", err))
			return
		}
		events = relabel(r.Context(), reloads)
	} else {
		ch, cancel := s.Streams.Subscribe(key)
		defer cancel()
		events = ch
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprint(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.Logger.Debug("sse client connected", "key", key)

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("sse client disconnected", "key", key)
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func relabel(ctx context.Context, reloads <-chan struct{}) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-reloads:
				if !ok {
					return
				}
				select {
				case out <- "reload":
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &requestError{msg: "invalid request body", err: err}
	}
	if err := validate.Struct(v); err != nil {
		return &requestError{msg: "invalid request", err: err}
	}
	return nil
}

type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string {
	var verrs validator.ValidationErrors
	if errors.As(e.err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("%s: field '%s' failed '%s'", e.msg, verrs[0].Field(), verrs[0].Tag())
	}
	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *requestError) Unwrap() error { return e.err }

func textResponse(res *service.Result) TextResponse {
	return TextResponse{Key: res.Key, SessionID: res.Session.ID, Text: res.Text}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	var reqErr *requestError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &reqErr),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8):
		s.Logger.Warn("request rejected", "err", err)
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.Logger.Error("request failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.respond(w, status, ErrorResponse{Error: msg})
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("failed to encode response", "err", err)
	}
}
