package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/quest"
	"github.com/aretw0/quest/internal/config"
	"github.com/aretw0/quest/pkg/adapters/file"
	"github.com/aretw0/quest/pkg/adapters/memory"
	"github.com/aretw0/quest/pkg/adapters/redis"
	"github.com/aretw0/quest/pkg/adapters/sqlite"
	"github.com/aretw0/quest/pkg/domain"
	"github.com/aretw0/quest/pkg/observability"
	"github.com/aretw0/quest/pkg/persistence/middleware"
	"github.com/aretw0/quest/pkg/ports"
	"github.com/aretw0/quest/pkg/runner"
	"github.com/aretw0/quest/pkg/service"
	"github.com/aretw0/quest/pkg/session"
)

// App holds everything a command needs, built from one Config.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Engine   *quest.Engine
	Metrics  *observability.Metrics
	Sessions *session.Manager
	Service  *service.Service

	closers []func() error
}

// NewApp builds the engine, the session store chosen by cfg.Store and the service on top.
// Extra service options (observers) are appended after the defaults.
func NewApp(cfg config.Config, logger *slog.Logger, svcOpts ...service.Option) (*App, error) {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(observability.WithLogger(logger)),
	}

	engine, err := NewEngine(cfg, logger, app.Metrics.Hooks())
	if err != nil {
		return nil, err
	}
	app.Engine = engine

	store, locker, closer, err := NewStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	managerOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(locker))
	}
	app.Sessions = session.NewManager(store, managerOpts...)

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithSanitizer(runner.NewSanitizer(cfg.MaxInputSize)),
	}
	app.Service = service.New(engine, app.Sessions, append(opts, svcOpts...)...)
	return app, nil
}

// Close releases store connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewEngine loads the content named by cfg and applies the resolver settings.
func NewEngine(cfg config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*quest.Engine, error) {
	opts := []quest.Option{quest.WithLogger(logger)}
	if len(hooks) > 0 {
		opts = append(opts, quest.WithLifecycleHooks(observability.Combine(hooks...)))
	}
	if cfg.MinKeywordLength > 0 {
		opts = append(opts, quest.WithMinKeywordLength(cfg.MinKeywordLength))
	}
	if len(cfg.StopWords) > 0 {
		opts = append(opts, quest.WithStopWords(cfg.StopWords...))
	}

	engine, err := quest.New(cfg.ContentPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// NewStore opens the session store for cfg.Store and wraps it with the PII and encryption middleware.
// The locker is non-nil only for redis with locking enabled. The closer may be nil.
func NewStore(cfg config.Config, logger *slog.Logger) (ports.SessionStore, ports.DistributedLocker, func() error, error) {
	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
		closer func() error
	)

	switch cfg.Store {
	case config.StoreMemory:
		store = memory.NewStore()
	case config.StoreFile:
		store = file.New(cfg.SessionDir)
	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		store, closer = s, s.Close
	case config.StoreRedis:
		s := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redis.WithPrefix(cfg.RedisPrefix),
			redis.WithTTL(cfg.RedisTTL),
		)
		if err := s.Client().Ping(context.Background()).Err(); err != nil {
			_ = s.Close()
			return nil, nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		store, closer = s, s.Close
		if cfg.RedisLock {
			locker = redis.NewLocker(s.Client(), cfg.RedisPrefix)
		}
	default:
		return nil, nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
	logger.Debug("session store ready", "kind", cfg.Store, "locking", locker != nil)

	var mws []middleware.Middleware
	if len(cfg.PIIPatterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.PIIPatterns))
	}
	if cfg.EncryptionKey != "" {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: []byte(cfg.EncryptionKey),
		}))
	}
	return middleware.Chain(store, mws...), locker, closer, nil
}
