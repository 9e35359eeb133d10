package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/quest/internal/logging"
	"github.com/aretw0/quest/pkg/domain"
)

// Metrics holds the engine counters.
type Metrics struct {
	SessionsStarted prometheus.Counter
	SessionsReset   prometheus.Counter
	Transitions     *prometheus.CounterVec
	NoMatches       *prometheus.CounterVec
	SceneVisits     *prometheus.CounterVec

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// MetricsOption configures Metrics.
type MetricsOption func(*Metrics)

// WithLogger logs every hook event at debug level.
func WithLogger(logger *slog.Logger) MetricsOption {
	return func(m *Metrics) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMetrics creates the counters and registers them on a fresh registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quest_sessions_started_total",
			Help: "Total number of sessions started",
		}),
		SessionsReset: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quest_sessions_reset_total",
			Help: "Total number of sessions reset",
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quest_transitions_total",
			Help: "Total number of transitions taken, by action and matching tier",
		}, []string{"action", "tier"}),
		NoMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quest_no_match_total",
			Help: "Total number of inputs that matched no choice, by scene",
		}, []string{"scene"}),
		SceneVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quest_scene_visits_total",
			Help: "Total number of scene visits",
		}, []string{"scene"}),
		gatherer: reg,
		logger:   logging.NewNop(),
	}
	reg.MustRegister(m.SessionsStarted, m.SessionsReset, m.Transitions, m.NoMatches, m.SceneVisits)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Hooks returns lifecycle hooks that record into these metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(ctx context.Context, e *domain.SessionEvent) {
			m.logger.Debug("session_start", "session_id", e.SessionID, "scene", e.SceneID)
			m.SessionsStarted.Inc()
			m.SceneVisits.WithLabelValues(e.SceneID).Inc()
		},
		OnSessionReset: func(ctx context.Context, e *domain.SessionEvent) {
			m.logger.Debug("session_reset", "session_id", e.SessionID, "scene", e.SceneID)
			m.SessionsReset.Inc()
			m.SceneVisits.WithLabelValues(e.SceneID).Inc()
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			m.logger.Debug("transition", "session_id", e.SessionID, "from", e.From, "action", e.Action, "to", e.To, "tier", e.Tier)
			tier := string(e.Tier)
			if tier == "" {
				tier = "direct"
			}
			m.Transitions.WithLabelValues(e.Action, tier).Inc()
			m.SceneVisits.WithLabelValues(e.To).Inc()
		},
		OnNoMatch: func(ctx context.Context, e *domain.NoMatchEvent) {
			m.logger.Debug("no_match", "session_id", e.SessionID, "scene", e.SceneID)
			m.NoMatches.WithLabelValues(e.SceneID).Inc()
		},
	}
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Combine merges several hook sets; every non-nil hook is called in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnSessionStart = chain(out.OnSessionStart, h.OnSessionStart)
		out.OnSessionReset = chain(out.OnSessionReset, h.OnSessionReset)
		out.OnTransition = chain(out.OnTransition, h.OnTransition)
		out.OnNoMatch = chain(out.OnNoMatch, h.OnNoMatch)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
