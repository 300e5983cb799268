package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Sternrassler/category-pager/internal/config"
	"github.com/Sternrassler/category-pager/pkg/cache"
	"github.com/Sternrassler/category-pager/pkg/categories"
	"github.com/Sternrassler/category-pager/pkg/logging"
	"github.com/Sternrassler/category-pager/pkg/metrics"
	"github.com/Sternrassler/category-pager/pkg/pagination"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// app holds the components every subcommand needs.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	client *categories.Client
	store  cache.Store
	coord  *pagination.Coordinator

	closers []func() error
}

// newApp wires logging, the catalog client, the cache store and the fetch
// coordinator from cfg. defaultLog receives the logs unless cfg names a file.
// The metrics server, if configured, runs until ctx is done.
func newApp(ctx context.Context, cfg *config.Config, defaultLog io.Writer) (*app, error) {
	a := &app{cfg: cfg}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Pretty = cfg.Log.Pretty
	logCfg.Output = defaultLog
	logCfg.File = cfg.Log.File
	var (
		closeLog func() error
		err      error
	)
	a.logger, closeLog, err = logging.Setup(logCfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeLog)

	clientCfg := categories.DefaultConfig(cfg.API.BaseURL)
	clientCfg.UserAgent = cfg.API.UserAgent
	clientCfg.Timeout = cfg.API.Timeout
	clientCfg.Retry.MaxAttempts = cfg.API.MaxAttempts
	clientCfg.BreakerFailures = cfg.API.BreakerFailures
	clientCfg.BreakerCooldown = cfg.API.BreakerCooldown

	client, err := categories.New(clientCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create catalog client: %w", err)
	}
	a.client = client

	store, err := a.newStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	a.coord = pagination.NewCoordinator(client, store, pagination.CoordinatorConfig{
		Resource: cfg.Paging.Resource,
		PageSize: cfg.Paging.PageSize,
		TTL:      cfg.Paging.CacheTTL,
	}, logging.NewLogger("coordinator"))

	if cfg.Metrics.Addr != "" {
		logger := logging.NewLogger("metrics")
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	return a, nil
}

func (a *app) newStore(ctx context.Context) (cache.Store, error) {
	if !a.cfg.UsesRedis() {
		a.logger.Debug().Msg("Using in-memory page cache")
		return cache.NewMemoryStore(), nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", a.cfg.Redis.Addr, err)
	}
	a.closers = append(a.closers, redisClient.Close)

	a.logger.Info().Str("addr", a.cfg.Redis.Addr).Msg("Connected to Redis")
	return cache.NewRedisStore(redisClient, a.cfg.Paging.CacheTTL), nil
}

// newView opens a view on the configured location. With setPage the
// location is moved to page before the first load.
func (a *app) newView(setPage bool, page int) (*pagination.View, *pagination.URLLocation, error) {
	loc, err := pagination.NewURLLocation(a.cfg.Paging.Location)
	if err != nil {
		return nil, nil, err
	}
	state := pagination.NewPageState(loc, logging.NewLogger("page-state"))
	if setPage {
		state.SetPage(page)
	}
	return pagination.NewView(state, a.coord, logging.NewLogger("view")), loc, nil
}

// Close releases the log file and the Redis connection.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Debug().Err(err).Msg("Close failed")
		}
	}
	a.closers = nil
}
