package quest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/quest/content"
	"github.com/aretw0/quest/internal/runtime"
	loamAdapter "github.com/aretw0/quest/pkg/adapters/loam"
	yamlAdapter "github.com/aretw0/quest/pkg/adapters/yaml"
	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/graph"
	"github.com/aretw0/quest/pkg/ports"
)

// Engine is the high-level entry point for the quest library.
// It wraps the internal runtime and provides a simplified API for consumers.
// An Engine is safe for concurrent use: it keeps no per-session state.
type Engine struct {
	runtime      *runtime.Engine
	loader       ports.GraphLoader
	graph        *graph.Graph
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	resolverOpts []runtime.ResolverOption
	runtimeOpts  []runtime.EngineOption
	Name         string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom GraphLoader, bypassing path-based content discovery.
func WithLoader(l ports.GraphLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithGraph injects an already built graph.
func WithGraph(g *graph.Graph) Option {
	return func(e *Engine) {
		e.graph = g
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock sets the time source for session start times and history timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithClock(now))
	}
}

// WithIDGenerator sets the session id source (default: random UUIDs).
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithIDGenerator(newID))
	}
}

// WithMinKeywordLength makes loose matching ignore description words shorter than n runes.
// Exact action ids and action ids contained in the input still match.
func WithMinKeywordLength(n int) Option {
	return func(e *Engine) {
		e.resolverOpts = append(e.resolverOpts, runtime.WithMinKeywordLength(n))
	}
}

// WithStopWords makes loose matching ignore the given description words.
func WithStopWords(words ...string) Option {
	return func(e *Engine) {
		e.resolverOpts = append(e.resolverOpts, runtime.WithStopWords(words...))
	}
}

// New initializes a new quest Engine.
// The content comes from, in order of precedence: WithGraph, WithLoader, or contentPath.
// A directory path is read as a Loam repository of scene documents, a file path as a YAML world.
// An empty path selects the embedded default world.
func New(contentPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.graph == nil && eng.loader == nil {
		loader, name, err := discover(contentPath)
		if err != nil {
			return nil, err
		}
		eng.loader = loader
		eng.Name = name
	} else if contentPath != "" {
		eng.Name = filepath.Base(contentPath)
	}

	if eng.graph == nil {
		g, err := eng.loader.Load(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to load content: %w", err)
		}
		eng.graph = g
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("world", eng.Name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithResolver(runtime.NewResolver(eng.resolverOpts...)),
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)

	eng.runtime = runtime.NewEngine(eng.graph, runtimeOpts...)
	return eng, nil
}

func discover(contentPath string) (ports.GraphLoader, string, error) {
	if contentPath == "" {
		return content.Loader(), "eldoria", nil
	}

	absPath, err := filepath.Abs(contentPath)
	if err != nil {
		return nil, "", fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, "", fmt.Errorf("invalid content path: %w", err)
	}

	name := filepath.Base(absPath)
	if info.IsDir() {
		loader, err := loamAdapter.Open(absPath)
		if err != nil {
			return nil, "", err
		}
		return loader, name, nil
	}
	return yamlAdapter.New(absPath), name, nil
}

// StartSession creates a fresh session at the initial scene.
// The text is the world's greeting, if any, followed by the first scene.
func (e *Engine) StartSession(ctx context.Context, subjectName string) (*domain.Session, string) {
	return e.runtime.Start(ctx, subjectName)
}

// DescribeCurrent renders the session's current scene without changing it.
func (e *Engine) DescribeCurrent(session *domain.Session) string {
	return e.runtime.Describe(session)
}

// SubmitAction resolves free-form input against the current scene.
// On a match the returned session has advanced; otherwise it is the input session, unchanged,
// and the text asks the player to try again.
func (e *Engine) SubmitAction(ctx context.Context, session *domain.Session, input string) (*domain.Session, domain.Outcome, string, error) {
	return e.runtime.Submit(ctx, session, input)
}

// Summarize lists the session's journal, inventory and recent choices.
func (e *Engine) Summarize(session *domain.Session) string {
	return e.runtime.Summarize(session)
}

// ResetSession discards progress and starts over, keeping the player's name.
func (e *Engine) ResetSession(ctx context.Context, session *domain.Session) (*domain.Session, string) {
	return e.runtime.Reset(ctx, session)
}

// Advance takes a choice by its action id. It fails with *domain.InvalidTransitionError
// when the current scene does not offer it.
func (e *Engine) Advance(ctx context.Context, session *domain.Session, actionID string) (*domain.Session, string, error) {
	return e.runtime.Advance(ctx, session, actionID)
}

// Resolve reports which choice, if any, the input selects. It never changes the session.
func (e *Engine) Resolve(session *domain.Session, input string) (domain.Match, bool) {
	return e.runtime.Resolve(session, input)
}

// Graph returns the content graph.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Watch returns a channel that signals when the underlying content changes.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Loader returns the underlying GraphLoader, or nil when the engine was built from a graph.
func (e *Engine) Loader() ports.GraphLoader {
	return e.loader
}

var _ ports.Engine = (*Engine)(nil)
