package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/aretw0/quest/internal/logging"
	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/ports"
	"github.com/aretw0/quest/pkg/session"
)

// Meta commands understood by the loop before input reaches the engine.
var (
	quitCommands    = []string{"quit", "exit"}
	journalCommands = []string{"journal", "summary", "show journal"}
	lookCommands    = []string{"look", "where am i"}
	restartCommands = []string{"restart", "start over"}
)

// Runner handles the play loop of the engine using the provided IO.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Stdin/Stdout is used.
	Handler IOHandler

	// Renderer is passed to the default TextHandler.
	Renderer ContentRenderer

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	// Sanitizer checks every line before it is interpreted.
	Sanitizer Sanitizer

	// Key is the conversation key used for persistence. Empty means ephemeral.
	Key string

	// SubjectName is the player's name for a new session.
	SubjectName string

	sessions *session.Manager
	initial  *domain.Session
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run plays until the player quits, the input ends, the context is cancelled,
// or the session reaches a scene without choices.
func (r *Runner) Run(ctx context.Context, engine ports.Engine) error {
	handler := r.resolveHandler()

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	s, text, err := r.resolveSession(ctx, engine)
	if err != nil {
		return err
	}
	if err := handler.Output(ctx, newTurn(s, text, nil)); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	for s.Status != domain.StatusEnded {
		line, err := handler.Input(signals.Context())
		if err != nil {
			signals.CheckRace()
			if errors.Is(err, io.EOF) || signals.Context().Err() != nil {
				r.Logger.Debug("runner stopped", "key", r.Key, "err", err)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		line, err = r.Sanitizer.Sanitize(line)
		if err != nil {
			if err := handler.SystemOutput(ctx, fmt.Sprintf("Error: %v. Please try again.", err)); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		}

		command := strings.ToLower(strings.TrimSpace(line))
		if command == "" {
			continue
		}
		if slices.Contains(quitCommands, command) {
			return nil
		}

		next, turn, err := r.step(ctx, engine, s, command, line)
		if err != nil {
			return err
		}
		if next != s {
			if err := r.save(ctx, next); err != nil {
				return fmt.Errorf("critical persistence error: %w", err)
			}
			s = next
		}
		if err := handler.Output(ctx, turn); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
	return nil
}

// step runs one player line against the session.
func (r *Runner) step(ctx context.Context, engine ports.Engine, s *domain.Session, command, line string) (*domain.Session, Turn, error) {
	switch {
	case slices.Contains(journalCommands, command):
		return s, newTurn(s, engine.Summarize(s), nil), nil
	case slices.Contains(lookCommands, command):
		return s, newTurn(s, engine.DescribeCurrent(s), nil), nil
	case slices.Contains(restartCommands, command):
		next, text := engine.ResetSession(ctx, s)
		return next, newTurn(next, text, nil), nil
	}

	next, outcome, text, err := engine.SubmitAction(ctx, s, line)
	if err != nil {
		return s, Turn{}, fmt.Errorf("submit error: %w", err)
	}
	return next, newTurn(next, text, &outcome), nil
}

func (r *Runner) save(ctx context.Context, s *domain.Session) error {
	if r.sessions == nil || r.Key == "" {
		return nil
	}
	if err := r.sessions.Save(ctx, r.Key, s); err != nil {
		return err
	}
	r.Logger.Debug("session saved", "key", r.Key, "scene", s.CurrentSceneID)
	return nil
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout, WithTextHandlerRenderer(r.Renderer))
	}
	return r.Handler
}

// resolveSession picks the record to play: an explicit one, a stored one, or a new one.
func (r *Runner) resolveSession(ctx context.Context, engine ports.Engine) (*domain.Session, string, error) {
	if r.initial != nil {
		return r.initial, engine.DescribeCurrent(r.initial), nil
	}

	if r.sessions == nil || r.Key == "" {
		s, text := engine.StartSession(ctx, r.SubjectName)
		return s, text, nil
	}

	var text string
	s, created, err := r.sessions.LoadOrStart(ctx, r.Key, func(ctx context.Context) *domain.Session {
		var s *domain.Session
		s, text = engine.StartSession(ctx, r.SubjectName)
		return s
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to load session %s: %w", r.Key, err)
	}
	if !created {
		text = engine.DescribeCurrent(s)
		r.Logger.Debug("session resumed", "key", r.Key, "scene", s.CurrentSceneID)
	}
	return s, text, nil
}
