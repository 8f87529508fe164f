package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"battle-analytics/internal/config"
	"battle-analytics/internal/ingestion"
	"battle-analytics/internal/library"
	"battle-analytics/internal/pricing"
	"battle-analytics/internal/scanner"
	"battle-analytics/internal/solana"
	"battle-analytics/internal/storage"
	"battle-analytics/internal/storage/clickhouse"
	"battle-analytics/internal/storage/memory"
	"battle-analytics/internal/storage/postgres"
	"battle-analytics/internal/storage/redis"
)

// Build connects every backend selected by cfg and returns a ready
// Orchestrator. Close releases the connections.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var closers []func()
	fail := func(err error) (*Orchestrator, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		return nil, err
	}

	// Library
	var lib storage.MarketLibrary
	if cfg.Library != "" {
		ml, err := library.Open(cfg.Library)
		if err != nil {
			return fail(fmt.Errorf("open library: %w", err))
		}
		lib = ml
	} else {
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return fail(fmt.Errorf("connect postgres: %w", err))
		}
		closers = append(closers, pool.Close)
		lib = postgres.NewMarketLibrary(pool)
	}

	// Cache
	var cache storage.StateCache
	switch cfg.CacheBackend {
	case config.CacheRedis:
		client, err := redis.New(ctx, redis.ClientConfig{Addr: cfg.RedisAddr, MaxRetries: cfg.MaxRetries})
		if err != nil {
			return fail(fmt.Errorf("connect redis: %w", err))
		}
		closers = append(closers, func() { _ = client.Close() })
		cache = redis.NewStateCache(client, cfg.CacheTTL)
	default:
		cache = memory.NewStateCache(cfg.CacheTTL)
	}

	// Transfer feed
	clientOpts := []solana.ClientOption{
		solana.WithMaxRetries(cfg.MaxRetries),
		solana.WithRetryDelay(cfg.RetryBackoff),
	}
	var feed scanner.TransferFeed
	switch cfg.Feed {
	case config.FeedClickHouse:
		conn, err := clickhouse.NewConn(ctx, cfg.ClickHouseDSN)
		if err != nil {
			return fail(fmt.Errorf("connect clickhouse: %w", err))
		}
		closers = append(closers, func() { _ = conn.Close() })
		feed = clickhouse.NewTransferFeed(conn)
	default:
		feed = solana.NewEnhancedClient(cfg.EnhancedURL, cfg.APIKey, clientOpts...)
	}

	sc := scanner.New(feed, scanner.Config{
		PageSize:   cfg.PageSize,
		MaxRecords: cfg.MaxRecords,
		Split:      cfg.Split(),
	}, scanner.WithLogger(logger))

	fetcher := ingestion.NewFetcher(ingestion.FetcherOptions{
		RPC:       solana.NewHTTPClient(cfg.RPCURL, clientOpts...),
		Scanner:   sc,
		Cache:     cache,
		CacheName: cfg.CacheBackend,
		ProgramID: cfg.ProgramID,
		Logger:    logger,
	})

	prices := pricing.NewCoinGecko(pricing.Options{URL: cfg.PriceURL, Logger: logger})

	o := New(Options{
		Library: lib,
		Fetcher: fetcher,
		Prices:  prices,
		Batch:   ingestion.BatchOptions{BatchSize: cfg.BatchSize, Delay: cfg.BatchDelay},
		Watch:   ingestion.WatcherOptions{Interval: cfg.PollInterval},
		Logger:  logger,
	})
	o.closers = closers

	logger.Info("orchestrator ready",
		zap.String("cache", cfg.CacheBackend),
		zap.String("feed", cfg.Feed),
		zap.Bool("postgres_library", cfg.Library == ""),
		zap.String("program_id", cfg.ProgramID),
	)
	return o, nil
}
