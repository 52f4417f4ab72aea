package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/sngor/bayon-coagent-sub013/internal/config"
	"github.com/sngor/bayon-coagent-sub013/internal/domain"
	"github.com/sngor/bayon-coagent-sub013/internal/health"
	"github.com/sngor/bayon-coagent-sub013/internal/infra/cachestore"
	"github.com/sngor/bayon-coagent-sub013/internal/infra/engagement"
	"github.com/sngor/bayon-coagent-sub013/internal/infra/resultrecorder"
	"github.com/sngor/bayon-coagent-sub013/internal/observability"
	"github.com/sngor/bayon-coagent-sub013/internal/observability/metrics"
	"github.com/sngor/bayon-coagent-sub013/internal/service/batch"
	"github.com/sngor/bayon-coagent-sub013/internal/service/cache"
)

// app holds everything one process needs to run batches.
type app struct {
	cfg          *config.Config
	obs          *observability.Resources
	store        cachestore.Store
	source       engagement.Source
	recorder     domain.ResultRecorder
	cacheManager *cache.Manager
	orchestrator *batch.Orchestrator
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	obs, err := initObservability(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	slog.SetDefault(obs.Logger())

	a := &app{cfg: cfg, obs: obs}

	a.store, err = openCacheStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.source, err = engagement.Open(ctx, cfg.Engagement)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open engagement source: %w", err)
	}

	a.recorder, err = resultrecorder.NewRecorder(ctx, resultrecorder.LoadConfig())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize result recorder: %w", err)
	}

	optimizerMetrics, err := metrics.NewOptimizerMetrics()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize optimizer metrics: %w", err)
	}

	a.cacheManager = cache.NewManager(a.store, time.Now)
	a.orchestrator = batch.NewOrchestrator(
		engagement.NewBreakerRepository(a.source, cfg.Breaker),
		a.cacheManager,
		a.recorder,
		cfg.Optimizer,
		optimizerMetrics,
		slog.Default(),
		time.Now,
	)

	return a, nil
}

// dependencies lists what the readiness probe pings.
func (a *app) dependencies() []health.Dependency {
	deps := []health.Dependency{{Name: string(a.cfg.CacheStore.Store), Pinger: a.store}}
	if pinger, ok := a.source.(health.Pinger); ok {
		deps = append(deps, health.Dependency{Name: string(a.cfg.Engagement.Source), Pinger: pinger})
	}
	return deps
}

func (a *app) Close() {
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			slog.Warn("failed to close result recorder", slog.String("error", err.Error()))
		}
	}
	if a.source != nil {
		if err := a.source.Close(); err != nil {
			slog.Warn("failed to close engagement source", slog.String("error", err.Error()))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("failed to close cache store", slog.String("error", err.Error()))
		}
	}
	if a.obs != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}
}

func openCacheStore(ctx context.Context, cfg *config.Config) (cachestore.Store, error) {
	switch cfg.CacheStore.Store {
	case config.CacheStoreBadger:
		db, err := cachestore.OpenBadger(cfg.CacheStore.BadgerPath)
		if err != nil {
			return nil, err
		}
		slog.Info("badger cache store opened",
			slog.String("path", cfg.CacheStore.BadgerPath),
			slog.Bool("in_memory", cfg.CacheStore.BadgerPath == ""),
		)
		return cachestore.NewBadgerStore(db), nil

	case config.CacheStoreRedis:
		client, err := newRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &ownedRedisStore{RedisStore: cachestore.NewRedisStore(client, cfg.Redis.KeyPrefix), client: client}, nil

	default:
		return nil, config.ErrUnknownCacheStore
	}
}

func newRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	if err := redisotel.InstrumentTracing(client); err != nil {
		_ = client.Close()
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := redisotel.InstrumentMetrics(client); err != nil {
		_ = client.Close()
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return nil, errors.Join(cachestore.ErrRedisConnection, err)
	}

	slog.Info("redis connected",
		slog.String("addr", cfg.Addr),
		slog.String("key_prefix", cfg.KeyPrefix),
	)

	return client, nil
}

// ownedRedisStore closes the client it was built with.
type ownedRedisStore struct {
	*cachestore.RedisStore
	client *redis.Client
}

func (s *ownedRedisStore) Close() error {
	return s.client.Close()
}
