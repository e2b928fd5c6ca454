package letluck

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/letluck/internal/content"
	"github.com/aretw0/letluck/pkg/adapters/file"
	loamAdapter "github.com/aretw0/letluck/pkg/adapters/loam"
	"github.com/aretw0/letluck/pkg/adapters/memory"
	"github.com/aretw0/letluck/pkg/adapters/redis"
	"github.com/aretw0/letluck/pkg/persistence/middleware"
	"github.com/aretw0/letluck/pkg/ports"
)

// openLoader picks the tree source: a Loam directory, a tree file, or the sample.
func openLoader(cfg Config, logger *slog.Logger) (ports.TreeLoader, error) {
	switch {
	case cfg.Content != "":
		return loamAdapter.Open(context.Background(), cfg.Content, loamAdapter.WithLogger(logger))
	case cfg.Tree != "":
		return file.NewLoader(cfg.Tree, file.WithLogger(logger))
	default:
		t, err := content.SampleTree()
		if err != nil {
			return nil, fmt.Errorf("failed to load sample tree: %w", err)
		}
		return memory.NewLoader(t), nil
	}
}

// openBackends fills the store and recency backend not injected by options.
func (a *App) openBackends() error {
	cfg := a.cfg.Store
	switch cfg.Backend {
	case "memory":
		if a.store == nil {
			a.store = memory.NewStore()
		}
		if a.recencyBackend == nil {
			a.recencyBackend = memory.NewRecency()
		}
	case "redis":
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix+"session:"),
			redis.WithTTL(cfg.TTL),
		)
		a.closers = append(a.closers, store.Close)
		if a.store == nil {
			a.store = store
		}
		if a.recencyBackend == nil {
			a.recencyBackend = redis.NewRecency(store.Client(), cfg.Redis.Prefix)
		}
		if cfg.Redis.Lock {
			a.locker = redis.NewLocker(store.Client(), cfg.Redis.Prefix)
		}
	default:
		if a.store == nil {
			a.store = file.New(filepath.Join(cfg.Dir, "sessions"))
		}
		if a.recencyBackend == nil {
			a.recencyBackend = file.NewRecency(filepath.Join(cfg.Dir, "recency.json"))
		}
	}

	active, fallback, err := cfg.Keys()
	if err != nil {
		return err
	}
	mws := append([]middleware.Middleware{}, a.storeMW...)
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
		a.logger.Debug("Session store encryption enabled", "fallback_keys", len(fallback))
	}
	a.store = middleware.Chain(a.store, mws...)
	return nil
}
