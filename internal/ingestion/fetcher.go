// Package ingestion turns market summaries into MarketState values: a cached
// single-market fetch, a rate-limited batch loader, and a polling watcher.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"battle-analytics/internal/account"
	"battle-analytics/internal/domain"
	"battle-analytics/internal/observability"
	"battle-analytics/internal/scanner"
	"battle-analytics/internal/solana"
	"battle-analytics/internal/storage"
)

// Fetch outcomes reported to metrics.
const (
	OutcomeCached    = "cached"
	OutcomeFresh     = "fresh"
	OutcomeDegraded  = "degraded"
	OutcomeNotFound  = "not_found"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
)

// MarketFetcher produces the current state of one market.
type MarketFetcher interface {
	Fetch(ctx context.Context, summary domain.MarketSummary, force bool) (*domain.MarketState, error)
}

// Fetcher runs the fetch pipeline: cache check, address derivation, account
// fetch and decode, transfer scan, state construction and cache write.
type Fetcher struct {
	rpc       solana.RPCClient
	scanner   *scanner.Scanner
	cache     storage.StateCache
	cacheName string
	programID string
	now       func() time.Time
	logger    *zap.Logger

	group singleflight.Group
}

// FetcherOptions contains configuration for creating a Fetcher.
type FetcherOptions struct {
	RPC       solana.RPCClient
	Scanner   *scanner.Scanner
	Cache     storage.StateCache
	CacheName string // metrics label, default "memory"
	ProgramID string // default solana.DefaultProgramID
	Now       func() time.Time
	Logger    *zap.Logger
}

// NewFetcher creates a new Fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	f := &Fetcher{
		rpc:       opts.RPC,
		scanner:   opts.Scanner,
		cache:     opts.Cache,
		cacheName: opts.CacheName,
		programID: opts.ProgramID,
		now:       opts.Now,
		logger:    opts.Logger,
	}
	if f.cacheName == "" {
		f.cacheName = "memory"
	}
	if f.programID == "" {
		f.programID = solana.DefaultProgramID
	}
	if f.now == nil {
		f.now = time.Now
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	return f
}

// Fetch returns the state of a market. A fresh cache entry is returned as is
// unless force is set. Concurrent fetches of the same market share one
// pipeline run.
//
// A missing account yields the zero state. A malformed account fails with
// account.ErrMalformedRecord. A failed transfer scan still yields the decoded
// account, with zeroed volume and trade counts, marked Degraded.
func (f *Fetcher) Fetch(ctx context.Context, summary domain.MarketSummary, force bool) (*domain.MarketState, error) {
	if summary.ID == "" {
		return nil, fmt.Errorf("fetch market: %w: empty market id", storage.ErrInvalidInput)
	}

	if !force && f.cache != nil {
		if state, ok := f.cached(ctx, summary.ID); ok {
			return state, nil
		}
	}

	key := summary.ID
	if force {
		key += "#force"
	}
	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		// another flight may have filled the cache since the check above
		if !force && f.cache != nil {
			if state, ok := f.cached(ctx, summary.ID); ok {
				return state, nil
			}
		}
		return f.load(ctx, summary)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.MarketState), nil
}

// Invalidate drops a market from the cache.
func (f *Fetcher) Invalidate(ctx context.Context, marketID string) error {
	if f.cache == nil {
		return nil
	}
	return f.cache.Invalidate(ctx, marketID)
}

func (f *Fetcher) cached(ctx context.Context, id string) (*domain.MarketState, bool) {
	state, ok, err := f.cache.Get(ctx, id)
	if err != nil {
		f.logger.Warn("cache read failed", zap.String("market", id), zap.Error(err))
		return nil, false
	}
	observability.RecordCacheLookup(f.cacheName, ok)
	if ok {
		observability.RecordMarketFetched(OutcomeCached, 0)
	}
	return state, ok
}

func (f *Fetcher) load(ctx context.Context, summary domain.MarketSummary) (*domain.MarketState, error) {
	start := time.Now()
	state, outcome, err := f.build(ctx, summary)
	observability.RecordMarketFetched(outcome, time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Put(ctx, state); err != nil {
			f.logger.Warn("cache write failed", zap.String("market", summary.ID), zap.Error(err))
		}
	}
	return state, nil
}

func (f *Fetcher) build(ctx context.Context, summary domain.MarketSummary) (*domain.MarketState, string, error) {
	log := f.logger.With(zap.String("market", summary.ID), zap.Uint64("battle_id", summary.BattleID))

	addrs, err := solana.DeriveBattleAddresses(f.programID, summary.BattleID)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("derive addresses: %w", err)
	}

	info, err := f.rpc.GetAccountInfo(ctx, addrs.Market)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("fetch battle account %s: %w", addrs.Market, err)
	}

	now := f.now()
	if info == nil {
		log.Warn("battle account not found, using zero state", zap.String("address", addrs.Market))
		return domain.NewZeroState(summary, addrs, now), OutcomeNotFound, nil
	}

	data, err := info.Bytes()
	if err != nil {
		return nil, OutcomeMalformed, fmt.Errorf("%w: %v", account.ErrMalformedRecord, err)
	}
	record, err := account.Decode(data, now)
	if err != nil {
		return nil, OutcomeMalformed, err
	}

	outcome := OutcomeFresh
	attr, err := f.scanner.Scan(ctx, scanner.Request{
		Market:   addrs.Market,
		Vault:    addrs.Vault,
		BalanceA: record.BalanceA,
		BalanceB: record.BalanceB,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, OutcomeError, err
		}
		outcome = OutcomeDegraded
		log.Warn("transfer scan failed, volume zeroed",
			zap.Int("partial_trades", attr.TradeCount),
			zap.Float64("partial_volume", attr.TotalVolume),
			zap.Error(err),
		)
		attr = domain.TransferAttribution{Degraded: true, RecentTrades: []domain.RecentTrade{}}
	}

	return domain.NewMarketState(summary, record, attr, addrs, now), outcome, nil
}
