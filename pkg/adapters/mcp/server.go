package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/quest"
	"github.com/aretw0/quest/internal/logging"
	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/service"
)

// GraphURI addresses the scene graph resource.
const GraphURI = "quest://graph"

// TurnResponse is the structured result of every session tool.
type TurnResponse struct {
	SessionKey string               `json:"session_key" jsonschema_description:"Key to pass to the next call"`
	SessionID  string               `json:"session_id" jsonschema_description:"Identifier of the current playthrough; changes on restart"`
	SceneID    string               `json:"scene_id" jsonschema_description:"Scene the player is in"`
	Status     domain.SessionStatus `json:"status" jsonschema_description:"active, ended or adrift"`
	Text       string               `json:"text" jsonschema_description:"Narration to read to the player"`
	Matched    *bool                `json:"matched,omitempty" jsonschema_description:"Whether the action matched a choice (player_action only)"`
	Action     string               `json:"action,omitempty" jsonschema_description:"Choice the action resolved to"`
}

// StartArgs are the arguments of start_adventure.
type StartArgs struct {
	PlayerName string `json:"player_name"`
	SessionKey string `json:"session_key"`
}

// KeyArgs are the arguments of tools addressing an existing session.
type KeyArgs struct {
	SessionKey string `json:"session_key"`
}

// ActionArgs are the arguments of player_action.
type ActionArgs struct {
	SessionKey string `json:"session_key"`
	Action     string `json:"action"`
}

// Server exposes the session service as an MCP server.
type Server struct {
	svc       *service.Service
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(svc *service.Service, opts ...Option) *Server {
	s := &Server{
		svc:       svc,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("quest-mcp", strings.TrimSpace(quest.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves SSE on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_adventure",
		mcp.WithDescription("Start a new adventure. Replaces any adventure stored under the key."),
		mcp.WithString("player_name", mcp.Description("Name to greet the player with (optional)")),
		mcp.WithString("session_key", mcp.Description("Key to store the adventure under; generated when omitted")),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("get_scene",
		mcp.WithDescription("Describe the current scene and its choices."),
		mcp.WithString("session_key", mcp.Required(), mcp.Description("Adventure key")),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleScene))

	s.mcpServer.AddTool(mcp.NewTool("player_action",
		mcp.WithDescription("Interpret what the player says and advance the story when it matches a choice."),
		mcp.WithString("session_key", mcp.Required(), mcp.Description("Adventure key")),
		mcp.WithString("action", mcp.Required(), mcp.Description("The player's words, e.g. 'follow the tracks'")),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleAction))

	s.mcpServer.AddTool(mcp.NewTool("show_journal",
		mcp.WithDescription("Summarize the journal, inventory and recent choices."),
		mcp.WithString("session_key", mcp.Required(), mcp.Description("Adventure key")),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleJournal))

	s.mcpServer.AddTool(mcp.NewTool("restart_adventure",
		mcp.WithDescription("Start over from the beginning under the same key."),
		mcp.WithString("session_key", mcp.Required(), mcp.Description("Adventure key")),
		mcp.WithOutputSchema[TurnResponse](),
	), mcp.NewStructuredToolHandler(s.handleRestart))
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args StartArgs) (TurnResponse, error) {
	res, err := s.svc.Start(ctx, args.SessionKey, args.PlayerName)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return turn(res), nil
}

func (s *Server) handleScene(ctx context.Context, _ mcp.CallToolRequest, args KeyArgs) (TurnResponse, error) {
	if args.SessionKey == "" {
		return TurnResponse{}, errMissing("session_key")
	}
	res, err := s.svc.Describe(ctx, args.SessionKey)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("describe failed: %w", err)
	}
	return turn(res), nil
}

func (s *Server) handleAction(ctx context.Context, _ mcp.CallToolRequest, args ActionArgs) (TurnResponse, error) {
	if args.SessionKey == "" {
		return TurnResponse{}, errMissing("session_key")
	}
	res, err := s.svc.Submit(ctx, args.SessionKey, args.Action)
	if err != nil {
		s.logger.Warn("mcp action rejected", "key", args.SessionKey, "err", err, "size", len(args.Action))
		return TurnResponse{}, fmt.Errorf("action rejected: %w", err)
	}
	resp := turn(res)
	if res.Outcome != nil {
		matched := res.Outcome.Matched
		resp.Matched = &matched
		resp.Action = res.Outcome.ActionID
	}
	return resp, nil
}

func (s *Server) handleJournal(ctx context.Context, _ mcp.CallToolRequest, args KeyArgs) (TurnResponse, error) {
	if args.SessionKey == "" {
		return TurnResponse{}, errMissing("session_key")
	}
	res, err := s.svc.Summarize(ctx, args.SessionKey)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("summary failed: %w", err)
	}
	return turn(res), nil
}

func (s *Server) handleRestart(ctx context.Context, _ mcp.CallToolRequest, args KeyArgs) (TurnResponse, error) {
	if args.SessionKey == "" {
		return TurnResponse{}, errMissing("session_key")
	}
	res, err := s.svc.Reset(ctx, args.SessionKey)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("restart failed: %w", err)
	}
	return turn(res), nil
}

func errMissing(arg string) error {
	return fmt.Errorf("missing required argument '%s'", arg)
}

func turn(res *service.Result) TurnResponse {
	return TurnResponse{
		SessionKey: res.Key,
		SessionID:  res.Session.ID,
		SceneID:    res.Session.CurrentSceneID,
		Status:     res.Session.Status,
		Text:       res.Text,
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Scene graph of the loaded world",
		mcp.WithMIMEType("application/json"),
	), s.readGraph)
}

func (s *Server) readGraph(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	g := s.svc.Engine().Graph()
	payload, err := json.Marshal(map[string]any{
		"initial": g.Initial(),
		"scenes":  g.Scenes(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "application/json",
			Text:     string(payload),
		},
	}, nil
}
