package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/totem"
	"github.com/aretw0/totem/internal/config"
	"github.com/aretw0/totem/pkg/domain"
)

// NewEngine opens the configured backend and builds an engine on top of it.
// The caller must Close the returned backend.
func NewEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*totem.Engine, *Backend, error) {
	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []totem.Option{
		totem.WithLogger(logger),
		totem.WithStore(backend.Store),
		totem.WithLifecycleHooks(DebugHooks(logger)),
	}
	if cfg.CatalogPath != "" {
		opts = append(opts, totem.WithCatalogPath(cfg.CatalogPath))
	}
	if backend.Locker != nil {
		opts = append(opts, totem.WithLocker(backend.Locker))
	}
	for _, h := range hooks {
		opts = append(opts, totem.WithLifecycleHooks(h))
	}

	engine, err := totem.New(opts...)
	if err != nil {
		_ = backend.Close()
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, backend, nil
}
