package letluck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/letluck/internal/config"
	"github.com/aretw0/letluck/internal/engine"
	"github.com/aretw0/letluck/internal/logging"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/observability"
	"github.com/aretw0/letluck/pkg/persistence/middleware"
	"github.com/aretw0/letluck/pkg/ports"
	"github.com/aretw0/letluck/pkg/recency"
	"github.com/aretw0/letluck/pkg/session"
)

// Version is stamped at build time with -ldflags "-X github.com/aretw0/letluck.Version=...".
var Version = "dev"

// Config is the runtime configuration read from letluck.yaml.
type Config = config.Config

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads a configuration file. An empty path tries letluck.yaml.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// App wires a tree, persistence, metrics and the session manager together.
type App struct {
	cfg      Config
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	registry *prometheus.Registry

	loader         ports.TreeLoader
	store          ports.StateStore
	recencyBackend ports.RecencyBackend
	locker         ports.DistributedLocker
	storeMW        []middleware.Middleware
	sessionOpts    []session.Option

	history *recency.Store
	metrics *observability.Metrics
	manager *session.Manager
	closers []func() error
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks on every session.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *App) {
		a.hooks = hooks
	}
}

// WithLoader injects a tree, bypassing the configured source.
func WithLoader(l ports.TreeLoader) Option {
	return func(a *App) {
		a.loader = l
	}
}

// WithStore injects a session store, bypassing the configured backend.
func WithStore(s ports.StateStore) Option {
	return func(a *App) {
		a.store = s
	}
}

// WithStoreMiddleware wraps the session store. The first middleware is the outermost;
// encryption configured under store.encryption_key always sits innermost.
func WithStoreMiddleware(mws ...middleware.Middleware) Option {
	return func(a *App) {
		a.storeMW = append(a.storeMW, mws...)
	}
}

// WithRecencyBackend injects where the anti-repeat history lives.
func WithRecencyBackend(b ports.RecencyBackend) Option {
	return func(a *App) {
		a.recencyBackend = b
	}
}

// WithRegistry sets the Prometheus registry metrics are registered on.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// WithSessionOptions appends options to every session the App builds.
func WithSessionOptions(opts ...session.Option) Option {
	return func(a *App) {
		a.sessionOpts = append(a.sessionOpts, opts...)
	}
}

// New assembles an App from cfg.
func New(cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
	}

	if a.loader == nil {
		loader, err := openLoader(cfg, a.logger)
		if err != nil {
			return nil, err
		}
		a.loader = loader
	}
	if err := a.openBackends(); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.history = recency.New(a.recencyBackend,
		recency.WithLimit(cfg.Recency.Limit),
		recency.WithLogger(a.logger),
	)
	a.metrics = observability.NewMetrics(a.registry)

	managerOpts := []session.ManagerOption{
		session.WithManagerLogger(a.logger),
		session.WithFactory(a.newSession),
	}
	if a.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(a.locker))
	}
	a.manager = session.NewManager(a.store, managerOpts...)
	return a, nil
}

func (a *App) newSession(opts ...session.Option) *session.Session {
	hooks := a.metrics.Hooks().
		Merge(observability.LogHooks(a.logger)).
		Merge(a.hooks)
	base := []session.Option{
		session.WithLogger(a.logger),
		session.WithHooks(hooks),
		session.WithLayout(engine.Layout(a.cfg.Display.Layout)),
		session.WithReducedMotion(a.cfg.Display.ReducedMotion),
	}
	base = append(base, a.sessionOpts...)
	return session.New(a.loader, a.history, append(base, opts...)...)
}

// Open returns the live session id, restoring or creating it.
// opts only apply when the session is created by this call.
func (a *App) Open(ctx context.Context, id string, opts ...session.Option) (*session.Session, error) {
	return a.manager.Open(ctx, id, opts...)
}

// Config returns the configuration the App was built with.
func (a *App) Config() Config { return a.cfg }

// Loader returns the category tree.
func (a *App) Loader() ports.TreeLoader { return a.loader }

// Manager returns the session manager.
func (a *App) Manager() *session.Manager { return a.manager }

// Recency returns the anti-repeat history.
func (a *App) Recency() *recency.Store { return a.history }

// Metrics returns the Prometheus collectors.
func (a *App) Metrics() *observability.Metrics { return a.metrics }

// Logger returns the App logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Watch refreshes every live session whenever the tree source changes.
// It returns when ctx is done, or at once when the loader cannot be watched.
func (a *App) Watch(ctx context.Context) error {
	w, ok := a.loader.(ports.Watchable)
	if !ok {
		return fmt.Errorf("tree source does not support watching")
	}
	ch, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			a.refreshAll(ctx)
		}
	}
}

func (a *App) refreshAll(ctx context.Context) {
	for _, id := range a.manager.Live() {
		s, ok := a.manager.Get(id)
		if !ok {
			continue
		}
		if err := s.Refresh(ctx); err != nil && !errors.Is(err, session.ErrRevealInProgress) {
			a.logger.Warn("Failed to refresh session after reload", "session_id", id, "err", err)
		}
	}
}

// Close stops live sessions and releases backends.
func (a *App) Close() error {
	var errs []error
	if a.manager != nil {
		errs = append(errs, a.manager.Close())
	}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
