// Package app is the composition root: it builds the service container and
// registers every platform subsystem with its dependency edges.
package app

import (
	"context"
	"log/slog"

	bootstrap "github.com/K-John/createrington-sub002"
	"github.com/K-John/createrington-sub002/internal/api"
	"github.com/K-John/createrington-sub002/internal/bot"
	"github.com/K-John/createrington-sub002/internal/cache"
	"github.com/K-John/createrington-sub002/internal/config"
	"github.com/K-John/createrington-sub002/internal/database"
	"github.com/K-John/createrington-sub002/internal/gateway"
	"github.com/K-John/createrington-sub002/internal/scheduler"
)

// Service names registered into the container. Dependents are registered
// after their dependencies so reverse registration order approximates a safe
// teardown order.
const (
	ServiceDatabase  = "database"
	ServiceCache     = "cache"
	ServiceBot       = "bot"
	ServiceBridgeBot = "bridge-bot"
	ServiceGateway   = "gateway"
	ServiceScheduler = "scheduler"
	ServiceAPI       = "api"
)

// Build constructs the platform container. No service starts here; startup
// happens when the caller runs InitializeAll.
func Build(cfg *config.Config, log *slog.Logger) (*bootstrap.Container, error) {
	c := bootstrap.New(bootstrap.WithLogger(log))
	observeServices(c)

	registrations := []struct {
		name    string
		factory bootstrap.Factory
		opts    []bootstrap.Option
	}{
		{
			name: ServiceDatabase,
			factory: func(ctx context.Context, c *bootstrap.Container) (any, error) {
				return database.Connect(ctx, cfg.Database, log)
			},
		},
		{
			name: ServiceCache,
			factory: func(ctx context.Context, c *bootstrap.Container) (any, error) {
				return cache.Connect(ctx, cfg.Redis)
			},
		},
		{
			name: ServiceBot,
			factory: func(ctx context.Context, c *bootstrap.Container) (any, error) {
				return bot.Connect(ctx, "main", cfg.Discord.Bot, log)
			},
			opts: []bootstrap.Option{bootstrap.WithDependencies(ServiceDatabase)},
		},
		{
			name: ServiceBridgeBot,
			factory: func(ctx context.Context, c *bootstrap.Container) (any, error) {
				return bot.Connect(ctx, "bridge", cfg.Discord.Bridge, log)
			},
			opts: []bootstrap.Option{bootstrap.WithDependencies(ServiceDatabase)},
		},
		{
			name: ServiceGateway,
			factory: func(ctx context.Context, c *bootstrap.Container) (any, error) {
				return gateway.New(cfg.Gateway, log), nil
			},
			opts: []bootstrap.Option{bootstrap.WithDependencies(ServiceCache)},
		},
		{
			name:    ServiceScheduler,
			factory: schedulerFactory(log),
			opts:    schedulerOptions(cfg),
		},
		{
			name:    ServiceAPI,
			factory: apiFactory(cfg, log),
			opts: []bootstrap.Option{
				bootstrap.WithDependencies(ServiceDatabase, ServiceCache, ServiceGateway),
			},
		},
	}

	for _, reg := range registrations {
		if err := c.Register(reg.name, reg.factory, reg.opts...); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func schedulerFactory(log *slog.Logger) bootstrap.Factory {
	return func(ctx context.Context, c *bootstrap.Container) (any, error) {
		db, err := bootstrap.Resolve[*database.DB](ctx, c, ServiceDatabase)
		if err != nil {
			return nil, err
		}

		s := scheduler.New(log)
		err = s.Add("pool-stats", "@every 1m", func() {
			stats := db.Stats()
			log.Debug("postgres pool stats",
				"acquired", stats.AcquiredConns(),
				"idle", stats.IdleConns(),
				"total", stats.TotalConns(),
			)
		})
		if err != nil {
			return nil, err
		}

		s.Start()
		return s, nil
	}
}

func schedulerOptions(cfg *config.Config) []bootstrap.Option {
	opts := []bootstrap.Option{bootstrap.WithDependencies(ServiceDatabase)}
	if !cfg.Scheduler.Enabled {
		opts = append(opts, bootstrap.Lazy())
	}
	return opts
}

func apiFactory(cfg *config.Config, log *slog.Logger) bootstrap.Factory {
	return func(ctx context.Context, c *bootstrap.Container) (any, error) {
		hub, err := bootstrap.Resolve[*gateway.Hub](ctx, c, ServiceGateway)
		if err != nil {
			return nil, err
		}
		router := api.NewRouter(c, hub.Handler(), log)
		return api.NewServer(cfg.API, router, log), nil
	}
}
