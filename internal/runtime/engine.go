package runtime

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/graph"
)

const timeFormat = time.RFC3339

// Engine is the core state machine runner.
// It holds no per-session state: every operation takes a session record and returns a new one.
type Engine struct {
	graph    *graph.Graph
	resolver *Resolver
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithResolver replaces the default resolver.
func WithResolver(r *Resolver) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.resolver = r
		}
	}
}

// WithClock sets the time source used for history timestamps and session start times.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator sets the session id source.
func WithIDGenerator(newID func() string) EngineOption {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// NewEngine creates a new engine over an immutable graph.
func NewEngine(g *graph.Graph, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:    g,
		resolver: NewResolver(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the content graph the engine runs.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Start creates a fresh session at the initial scene and returns it with its opening text.
func (e *Engine) Start(ctx context.Context, subjectName string) (*domain.Session, string) {
	s := e.fresh(subjectName)
	e.logger.Debug("session started", "session_id", s.ID, "scene", s.CurrentSceneID)

	if e.hooks.OnSessionStart != nil {
		e.hooks.OnSessionStart(ctx, e.sessionEvent(domain.EventSessionStart, s))
	}
	return s, withPreamble(e.graph.Narration().Greet(s.SubjectName), e.renderCurrent(s))
}

// Reset replaces a session with a fresh one, keeping only the subject name.
// A redacted name is not carried over.
func (e *Engine) Reset(ctx context.Context, old *domain.Session) (*domain.Session, string) {
	name := ""
	if old != nil && old.SubjectName != domain.Redacted {
		name = old.SubjectName
	}
	s := e.fresh(name)
	e.logger.Debug("session reset", "session_id", s.ID)

	if e.hooks.OnSessionReset != nil {
		e.hooks.OnSessionReset(ctx, e.sessionEvent(domain.EventSessionReset, s))
	}
	return s, withPreamble(e.graph.Narration().GreetAgain(s.SubjectName), e.renderCurrent(s))
}

// Describe renders the current scene of a session. It never changes the session.
func (e *Engine) Describe(s *domain.Session) string {
	return e.renderCurrent(s)
}

// Summarize lists the journal, inventory and recent choices of a session. It never changes the session.
func (e *Engine) Summarize(s *domain.Session) string {
	return e.summarize(s)
}

// Resolve maps input to a choice of the session's current scene.
// An unknown current scene has no choices, so nothing matches.
func (e *Engine) Resolve(s *domain.Session, input string) (domain.Match, bool) {
	scene, ok := e.graph.Lookup(s.CurrentSceneID)
	if !ok {
		return domain.Match{}, false
	}
	return e.resolver.Resolve(scene, input)
}

// Submit resolves input and, on a match, advances the session.
// On no match the original session is returned with a clarification and the current scene.
// A session whose current scene is unknown is moved to the initial scene instead; its history,
// journal and inventory are kept and the input is not resolved.
func (e *Engine) Submit(ctx context.Context, s *domain.Session, input string) (*domain.Session, domain.Outcome, string, error) {
	outcome := domain.Outcome{From: s.CurrentSceneID, To: s.CurrentSceneID}

	if _, ok := e.graph.Lookup(s.CurrentSceneID); !ok {
		next := s.Clone()
		next.CurrentSceneID = e.graph.Initial()
		next.Status = e.statusOf(next.CurrentSceneID)
		e.logger.Warn("session scene missing, moved to initial scene", "session_id", s.ID, "scene", s.CurrentSceneID)

		outcome.Recovered = true
		outcome.To = next.CurrentSceneID
		return next, outcome, withPreamble(e.graph.Narration().Recovery, e.renderCurrent(next)), nil
	}

	match, ok := e.Resolve(s, input)
	if !ok {
		e.logger.Debug("no choice matched", "session_id", s.ID, "scene", s.CurrentSceneID, "input", input)
		if e.hooks.OnNoMatch != nil {
			e.hooks.OnNoMatch(ctx, &domain.NoMatchEvent{
				EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventNoMatch, SessionID: s.ID},
				SceneID:   s.CurrentSceneID,
				Input:     input,
			})
		}
		return s, outcome, withPreamble(e.graph.Narration().Clarification, e.renderCurrent(s)), nil
	}

	next, text, err := e.advance(ctx, s, match.ActionID, match.Tier)
	if err != nil {
		return s, outcome, "", err
	}

	outcome.Matched = true
	outcome.ActionID = match.ActionID
	outcome.Tier = match.Tier
	outcome.To = next.CurrentSceneID
	return next, outcome, "You chose '" + match.ActionID + "'.\n\n" + text, nil
}

// Advance takes the named choice from the session's current scene.
// It returns *domain.InvalidTransitionError, and the input session, when the choice is not offered.
func (e *Engine) Advance(ctx context.Context, s *domain.Session, actionID string) (*domain.Session, string, error) {
	return e.advance(ctx, s, actionID, "")
}

func (e *Engine) advance(ctx context.Context, s *domain.Session, actionID string, tier domain.Tier) (*domain.Session, string, error) {
	scene, ok := e.graph.Lookup(s.CurrentSceneID)
	if !ok {
		return s, "", &domain.InvalidTransitionError{SceneID: s.CurrentSceneID, ActionID: actionID}
	}
	t, ok := scene.Transition(actionID)
	if !ok {
		return s, "", &domain.InvalidTransitionError{SceneID: s.CurrentSceneID, ActionID: actionID}
	}

	next := s.Clone()
	for _, eff := range t.Effects {
		e.apply(next, eff)
	}

	now := e.now()
	next.History = append(next.History, domain.HistoryEntry{
		From:      scene.ID,
		Action:    t.ActionID,
		To:        t.Target,
		Timestamp: now,
	})
	next.CurrentSceneID = t.Target
	next.Status = e.statusOf(t.Target)

	e.logger.Debug("transition", "session_id", next.ID, "from", scene.ID, "action", t.ActionID, "to", t.Target, "tier", tier)

	if e.hooks.OnTransition != nil {
		e.hooks.OnTransition(ctx, &domain.TransitionEvent{
			EventBase: domain.EventBase{Timestamp: now, Type: domain.EventTransition, SessionID: next.ID},
			From:      scene.ID,
			Action:    t.ActionID,
			To:        t.Target,
			Tier:      tier,
			Effects:   t.Effects,
		})
	}

	return next, e.renderCurrent(next), nil
}

// apply mutates a cloned session with one effect.
func (e *Engine) apply(s *domain.Session, eff domain.Effect) {
	switch eff.Kind {
	case domain.EffectAddJournal:
		s.Journal = append(s.Journal, eff.Value)
	case domain.EffectAddInventory:
		s.Inventory = append(s.Inventory, eff.Value)
	case domain.EffectNameEntity:
		if _, named := s.Entities[eff.Role]; !named && eff.Role != "" {
			s.Entities[eff.Role] = eff.Value
		}
	default:
		e.logger.Debug("ignoring unknown effect", "kind", eff.Kind)
	}
}

func (e *Engine) statusOf(sceneID string) domain.SessionStatus {
	scene, ok := e.graph.Lookup(sceneID)
	switch {
	case !ok:
		return domain.StatusAdrift
	case scene.IsTerminal():
		return domain.StatusEnded
	default:
		return domain.StatusActive
	}
}

func (e *Engine) fresh(subjectName string) *domain.Session {
	s := domain.NewSession(e.newID(), subjectName, e.graph.Initial(), e.now())
	s.Status = e.statusOf(s.CurrentSceneID)
	return s
}

func (e *Engine) sessionEvent(t domain.EventType, s *domain.Session) *domain.SessionEvent {
	return &domain.SessionEvent{
		EventBase: domain.EventBase{Timestamp: s.StartedAt, Type: t, SessionID: s.ID},
		SceneID:   s.CurrentSceneID,
	}
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
