package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/totem/internal/config"
	"github.com/aretw0/totem/pkg/adapters/memory"
	"github.com/aretw0/totem/pkg/adapters/redis"
	"github.com/aretw0/totem/pkg/adapters/sqlite"
	"github.com/aretw0/totem/pkg/ports"
)

// Backend is the session persistence selected by configuration.
type Backend struct {
	Store  ports.SessionStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend builds the session store named by cfg.Store.
func OpenBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		logger.Debug("Using memory session store")
		return &Backend{Store: memory.NewStore()}, nil

	case config.StoreRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redis.WithPrefix(cfg.RedisPrefix),
			redis.WithTTL(cfg.SessionTTL),
		)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("redis store %s: %w", cfg.RedisAddr, err)
		}
		b := &Backend{Store: store, close: store.Close}
		if cfg.RedisLock {
			b.Locker = redis.NewLocker(store.Client(), cfg.RedisPrefix)
		}
		logger.Info("Using redis session store", "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix, "ttl", cfg.SessionTTL, "lock", cfg.RedisLock)
		return b, nil

	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite store %s: %w", cfg.SQLitePath, err)
		}
		logger.Info("Using sqlite session store", "path", cfg.SQLitePath)
		return &Backend{Store: store, close: store.Close}, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
