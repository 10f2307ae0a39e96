// Package app wires the configured backend into a review service. Every
// binary builds its dependencies through here.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"testimonials/internal/kv"
	"testimonials/internal/reviews"
	"testimonials/internal/sync"
	"testimonials/pkg/logging"
	"testimonials/pkg/utils"
)

type App struct {
	Config  utils.Config
	KV      kv.KV
	Store   *reviews.Store
	Service *reviews.Service
}

func New(ctx context.Context, cfg utils.Config, logger *zap.Logger, pub sync.Publisher) (*App, error) {
	logger = logging.OrNop(logger)
	backend, err := kv.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	logger.Info("store opened", zap.String("driver", cfg.Store.Driver), zap.String("key", cfg.Store.Key))

	store := reviews.NewStore(backend, cfg.Store.Key, logger)
	return &App{
		Config:  cfg,
		KV:      backend,
		Store:   store,
		Service: reviews.NewService(store, pub, logger),
	}, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks backends that support it; the rest are always ready.
func (a *App) Ping(ctx context.Context) error {
	if p, ok := a.KV.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (a *App) Close() error {
	return a.KV.Close()
}
