package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/config"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/adapters/file"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/adapters/redis"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/loader"
	"github.com/aretw0/stepwise/pkg/observability"
	"github.com/aretw0/stepwise/pkg/persistence/middleware"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/wizard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// lockPrefix namespaces distributed session locks in redis.
const lockPrefix = "stepwise:"

// App bundles an engine with the collaborators the commands need.
type App struct {
	Engine   *stepwise.Engine
	Registry *wizard.Registry
	// Store is the session store as the engine sees it, middleware included.
	Store ports.SessionStore
	// Metrics gathers the engine's collectors and the Go runtime's.
	Metrics *prometheus.Registry
	Logger  *slog.Logger

	closers []func() error
}

// Close releases backend connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewApp loads the wizard definition and wires storage, locking, hooks and logging from cfg.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	reg, err := loader.Load(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("error loading wizard: %w", err)
	}
	return newApp(reg, cfg, logger)
}

func newApp(reg *wizard.Registry, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	app := &App{Registry: reg, Logger: logger}

	store, locker, err := app.buildStore(cfg.Store)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Store = store

	app.Metrics = prometheus.NewRegistry()
	app.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(app.Metrics)

	engineOpts := []stepwise.Option{
		stepwise.WithSessionStore(store),
		stepwise.WithLockTTL(cfg.Store.LockTTL),
		stepwise.WithLogger(logger),
		stepwise.WithLifecycleHooks(domain.MergeHooks(metrics.Hooks(), createDebugHooks(logger))),
		stepwise.WithCompleter(exportCompleter),
	}
	if locker != nil {
		engineOpts = append(engineOpts, stepwise.WithLocker(locker))
	}

	app.Engine, err = stepwise.New(reg, engineOpts...)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return app, nil
}

// buildStore creates the configured backend and wraps it with encryption when a key is set.
func (a *App) buildStore(cfg config.StoreConfig) (ports.SessionStore, ports.DistributedLocker, error) {
	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
	)
	switch cfg.Type {
	case "memory":
		store = memory.NewStore()
	case "file":
		store = file.NewStore(cfg.Dir)
	case "redis":
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		a.closers = append(a.closers, rs.Close)
		store = rs
		locker = redis.NewLocker(rs.Client(), lockPrefix)
	default:
		return nil, nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}

	active, fallback, ok, err := cfg.EncryptionKeys()
	if err != nil {
		return nil, nil, err
	}
	if ok {
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}
	a.Logger.Debug("Session store ready", "type", cfg.Type, "encrypted", ok)
	return store, locker, nil
}

// exportCompleter finishes a definition-driven wizard by handing back its exported answers.
func exportCompleter(_ context.Context, w *wizard.Wizard) (any, error) {
	return w.ExportData(), nil
}
