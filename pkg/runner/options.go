package runner

import (
	"log/slog"

	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/ports"
	"github.com/aretw0/quest/pkg/session"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore persists the session after every turn. It requires WithKey.
func WithStore(store ports.SessionStore) Option {
	return func(r *Runner) {
		if store != nil {
			r.sessions = session.NewManager(store)
		}
	}
}

// WithSessionManager persists through an existing manager, sharing its locks.
func WithSessionManager(m *session.Manager) Option {
	return func(r *Runner) {
		r.sessions = m
	}
}

// WithKey sets the conversation key the session is stored under.
// An existing session under the key is resumed.
func WithKey(key string) Option {
	return func(r *Runner) {
		r.Key = key
	}
}

// WithSubjectName sets the player name used when a new session starts.
func WithSubjectName(name string) Option {
	return func(r *Runner) {
		r.SubjectName = name
	}
}

// WithSession resumes the given record instead of starting or loading one.
func WithSession(s *domain.Session) Option {
	return func(r *Runner) {
		r.initial = s
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithRenderer configures the content renderer of the default text handler.
func WithRenderer(renderer ContentRenderer) Option {
	return func(r *Runner) {
		r.Renderer = renderer
	}
}

// WithSanitizer sets the input checks applied to every line.
func WithSanitizer(s Sanitizer) Option {
	return func(r *Runner) {
		r.Sanitizer = s
	}
}
