package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/quest/internal/logging"
	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/ports"
	"github.com/aretw0/quest/pkg/runner"
	"github.com/aretw0/quest/pkg/session"
)

// Result is the outcome of one keyed operation.
type Result struct {
	Key     string          `json:"key"`
	Session *domain.Session `json:"session"`
	Text    string          `json:"text"`
	Outcome *domain.Outcome `json:"outcome,omitempty"`
	// Previous is the record before the operation, when one existed.
	Previous *domain.Session `json:"-"`
}

// Service exposes the engine operations keyed by conversation handle.
type Service struct {
	engine    ports.Engine
	sessions  *session.Manager
	sanitizer runner.Sanitizer
	logger    *slog.Logger
	newKey    func() string
	observers []Observer
}

// Observer is notified after every committed change of a key.
type Observer func(ctx context.Context, key string, old, next *domain.Session)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSanitizer sets the checks applied to submitted text.
func WithSanitizer(san runner.Sanitizer) Option {
	return func(s *Service) {
		s.sanitizer = san
	}
}

// WithKeyGenerator sets how keys are made when Start is called without one.
func WithKeyGenerator(f func() string) Option {
	return func(s *Service) {
		if f != nil {
			s.newKey = f
		}
	}
}

// WithObserver registers a change observer (e.g. an SSE broadcaster).
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// New creates a Service.
func New(engine ports.Engine, sessions *session.Manager, opts ...Option) *Service {
	s := &Service{
		engine:   engine,
		sessions: sessions,
		logger:   logging.NewNop(),
		newKey:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the engine the service drives.
func (s *Service) Engine() ports.Engine {
	return s.engine
}

// Start begins a new session under key, replacing any record stored there.
// An empty key gets a generated one.
func (s *Service) Start(ctx context.Context, key, subjectName string) (*Result, error) {
	if key == "" {
		key = s.newKey()
	}
	var res *Result
	err := s.sessions.WithLock(ctx, key, func(ctx context.Context) error {
		prev, err := s.loadOptional(ctx, key)
		if err != nil {
			return err
		}
		sess, text := s.engine.StartSession(ctx, subjectName)
		if err := s.commit(ctx, key, prev, sess); err != nil {
			return err
		}
		res = &Result{Key: key, Session: sess, Text: text, Previous: prev}
		return nil
	})
	return res, err
}

// Describe renders the current scene of the session under key.
func (s *Service) Describe(ctx context.Context, key string) (*Result, error) {
	var res *Result
	err := s.sessions.WithLock(ctx, key, func(ctx context.Context) error {
		sess, text, err := s.loadOrStart(ctx, key)
		if err != nil {
			return err
		}
		if text == "" {
			text = s.engine.DescribeCurrent(sess)
		}
		res = &Result{Key: key, Session: sess, Text: text}
		return nil
	})
	return res, err
}

// Submit runs free-form input against the session under key.
// The record is saved when a choice matched or a lost session was moved back to the start.
// Input is sanitized first; runner.ErrInputTooLarge and runner.ErrInvalidUTF8 are returned as is.
func (s *Service) Submit(ctx context.Context, key, input string) (*Result, error) {
	clean, err := s.sanitizer.Sanitize(input)
	if err != nil {
		return nil, err
	}

	var res *Result
	err = s.sessions.WithLock(ctx, key, func(ctx context.Context) error {
		sess, _, err := s.loadOrStart(ctx, key)
		if err != nil {
			return err
		}
		next, outcome, text, err := s.engine.SubmitAction(ctx, sess, clean)
		if err != nil {
			s.logger.Error("engine rejected a resolved action", "key", key, "err", err)
			return err
		}
		if outcome.Matched || outcome.Recovered {
			if err := s.commit(ctx, key, sess, next); err != nil {
				return err
			}
		}
		res = &Result{Key: key, Session: next, Text: text, Outcome: &outcome, Previous: sess}
		return nil
	})
	return res, err
}

// Summarize lists the journal of the session under key.
func (s *Service) Summarize(ctx context.Context, key string) (*Result, error) {
	var res *Result
	err := s.sessions.WithLock(ctx, key, func(ctx context.Context) error {
		sess, _, err := s.loadOrStart(ctx, key)
		if err != nil {
			return err
		}
		res = &Result{Key: key, Session: sess, Text: s.engine.Summarize(sess)}
		return nil
	})
	return res, err
}

// Reset replaces the session under key with a fresh one. The key is kept.
func (s *Service) Reset(ctx context.Context, key string) (*Result, error) {
	var res *Result
	err := s.sessions.WithLock(ctx, key, func(ctx context.Context) error {
		prev, err := s.loadOptional(ctx, key)
		if err != nil {
			return err
		}
		var sess *domain.Session
		var text string
		if prev == nil {
			sess, text = s.engine.StartSession(ctx, "")
		} else {
			sess, text = s.engine.ResetSession(ctx, prev)
		}
		if err := s.commit(ctx, key, prev, sess); err != nil {
			return err
		}
		res = &Result{Key: key, Session: sess, Text: text, Previous: prev}
		return nil
	})
	return res, err
}

// Inspect returns the stored record under key without starting one.
// It fails with domain.ErrSessionNotFound for unknown keys.
func (s *Service) Inspect(ctx context.Context, key string) (*domain.Session, error) {
	return s.sessions.Load(ctx, key)
}

// List returns every stored key.
func (s *Service) List(ctx context.Context) ([]string, error) {
	keys, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return keys, nil
}

// End deletes the record under key. It fails with domain.ErrSessionNotFound for unknown keys.
func (s *Service) End(ctx context.Context, key string) error {
	return s.sessions.WithLock(ctx, key, func(ctx context.Context) error {
		if _, err := s.sessions.Store().Load(ctx, key); err != nil {
			return err
		}
		if err := s.sessions.Store().Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		s.logger.Debug("session ended", "key", key)
		return nil
	})
}

// loadOrStart loads the record under key, starting one when there is none.
// The text is the start text for a new record and empty otherwise. Must run under the key's lock.
func (s *Service) loadOrStart(ctx context.Context, key string) (*domain.Session, string, error) {
	var text string
	sess, created, err := s.sessions.LoadOrStartLocked(ctx, key, func(ctx context.Context) *domain.Session {
		var sess *domain.Session
		sess, text = s.engine.StartSession(ctx, "")
		return sess
	})
	if err != nil {
		return nil, "", err
	}
	if created {
		s.logger.Debug("session started implicitly", "key", key, "session_id", sess.ID)
		s.notify(ctx, key, nil, sess)
	}
	return sess, text, nil
}

func (s *Service) loadOptional(ctx context.Context, key string) (*domain.Session, error) {
	sess, err := s.sessions.Store().Load(ctx, key)
	switch {
	case err == nil:
		return sess, nil
	case errors.Is(err, domain.ErrSessionNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
}

func (s *Service) commit(ctx context.Context, key string, old, next *domain.Session) error {
	if err := s.sessions.Store().Save(ctx, key, next); err != nil {
		s.logger.Warn("failed to save session", "key", key, "err", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.notify(ctx, key, old, next)
	return nil
}

func (s *Service) notify(ctx context.Context, key string, old, next *domain.Session) {
	for _, o := range s.observers {
		o(ctx, key, old, next)
	}
}
