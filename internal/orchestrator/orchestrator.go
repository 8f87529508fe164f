// Package orchestrator wires the market library, state fetcher, batch loader
// and price source together and exposes the read operations shared by the
// CLI and the HTTP server.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/ingestion"
	"battle-analytics/internal/leaderboard"
	"battle-analytics/internal/library"
	"battle-analytics/internal/replay"
	"battle-analytics/internal/reporting"
	"battle-analytics/internal/settlement"
	"battle-analytics/internal/storage"
)

// Orchestrator coordinates library lookups, state fetches and the
// calculators run over the fetched states.
type Orchestrator struct {
	library storage.MarketLibrary
	fetcher ingestion.MarketFetcher
	loader  *ingestion.BatchLoader
	watcher *ingestion.Watcher
	prices  reporting.PriceSource
	reports *reporting.Generator
	logger  *zap.Logger

	closers []func()
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Library storage.MarketLibrary
	Fetcher ingestion.MarketFetcher
	Prices  reporting.PriceSource

	Batch  ingestion.BatchOptions
	Watch  ingestion.WatcherOptions
	Logger *zap.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Batch.Logger == nil {
		opts.Batch.Logger = logger
	}
	if opts.Watch.Logger == nil {
		opts.Watch.Logger = logger
	}

	loader := ingestion.NewBatchLoader(opts.Fetcher, opts.Batch)
	return &Orchestrator{
		library: opts.Library,
		fetcher: opts.Fetcher,
		loader:  loader,
		watcher: ingestion.NewWatcher(opts.Fetcher, opts.Watch),
		prices:  opts.Prices,
		reports: reporting.NewGenerator(opts.Library, loader, opts.Prices),
		logger:  logger,
	}
}

// Close releases the connections opened by Build, most recent first.
func (o *Orchestrator) Close() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		o.closers[i]()
	}
	o.closers = nil
}

// Markets lists the library, most recent first.
func (o *Orchestrator) Markets(ctx context.Context) ([]domain.MarketSummary, error) {
	summaries, err := o.library.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	return summaries, nil
}

// Summary looks up one library entry.
func (o *Orchestrator) Summary(ctx context.Context, id string) (domain.MarketSummary, error) {
	s, err := o.library.GetByID(ctx, id)
	if err != nil {
		return domain.MarketSummary{}, fmt.Errorf("market %s: %w", id, err)
	}
	return s, nil
}

// Market returns the current state of one market. force bypasses the cache.
func (o *Orchestrator) Market(ctx context.Context, id string, force bool) (*domain.MarketState, error) {
	s, err := o.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	return o.fetcher.Fetch(ctx, s, force)
}

// Settle returns the prize-pool distribution of one market at its current state.
func (o *Orchestrator) Settle(ctx context.Context, id string) (*domain.MarketState, domain.SettlementResult, error) {
	state, err := o.Market(ctx, id, false)
	if err != nil {
		return nil, domain.SettlementResult{}, err
	}
	return state, settlement.Settle(state), nil
}

// Simulate estimates the payout of investing amount SOL on side.
func (o *Orchestrator) Simulate(ctx context.Context, id string, side domain.SideID, amount float64) (settlement.Simulation, error) {
	if side != domain.SideA && side != domain.SideB {
		return settlement.Simulation{}, fmt.Errorf("side %q: %w", side, storage.ErrInvalidInput)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return settlement.Simulation{}, fmt.Errorf("amount %v: %w", amount, storage.ErrInvalidInput)
	}
	state, err := o.Market(ctx, id, false)
	if err != nil {
		return settlement.Simulation{}, err
	}
	return settlement.Simulate(state, side, amount), nil
}

// Replay synthesizes the display timeline of one market.
func (o *Orchestrator) Replay(ctx context.Context, id string, opts replay.Options) (domain.Timeline, error) {
	state, err := o.Market(ctx, id, false)
	if err != nil {
		return domain.Timeline{}, err
	}
	return replay.Synthesize(state, opts), nil
}

// LoadAll fetches every market of the library in batches. A cancelled load
// returns the states fetched so far together with the context error.
func (o *Orchestrator) LoadAll(ctx context.Context, progress ingestion.Progress) ([]domain.MarketSummary, ingestion.BatchResult, error) {
	summaries, err := o.Markets(ctx)
	if err != nil {
		return nil, ingestion.BatchResult{}, err
	}
	res, err := o.loader.Load(ctx, summaries, progress)
	if err != nil {
		o.logger.Warn("market load interrupted",
			zap.Int("completed", res.Completed),
			zap.Int("total", len(summaries)),
			zap.Error(err),
		)
	}
	return summaries, res, err
}

// ArtistLeaderboard aggregates artist earnings over the whole library.
func (o *Orchestrator) ArtistLeaderboard(ctx context.Context) ([]domain.ArtistLeaderboardStats, error) {
	_, res, err := o.LoadAll(ctx, nil)
	if err != nil && !isCancel(err) {
		return nil, err
	}
	price := o.prices.SOLPrice(context.WithoutCancel(ctx))
	return leaderboard.AggregateArtists(res.States, price), nil
}

// Activity ranks artists by participation. It needs no chain access.
func (o *Orchestrator) Activity(ctx context.Context) ([]domain.ArtistActivity, error) {
	summaries, err := o.Markets(ctx)
	if err != nil {
		return nil, err
	}
	return leaderboard.Activity(summaries), nil
}

// Events groups the library into battle events, most recent first.
func (o *Orchestrator) Events(ctx context.Context) ([]domain.BattleEvent, error) {
	summaries, err := o.Markets(ctx)
	if err != nil {
		return nil, err
	}
	return library.GroupEvents(summaries), nil
}

// Traders aggregates wallet flows over the whole library.
func (o *Orchestrator) Traders(ctx context.Context) ([]domain.TraderEntry, error) {
	_, res, err := o.LoadAll(ctx, nil)
	if err != nil && !isCancel(err) {
		return nil, err
	}
	return leaderboard.AggregateTraders(res.States), nil
}

// TraderProfile returns one wallet's drill-down, or storage.ErrNotFound when
// the wallet never traded in the library's markets.
func (o *Orchestrator) TraderProfile(ctx context.Context, wallet string) (domain.TraderProfile, error) {
	_, res, err := o.LoadAll(ctx, nil)
	if err != nil && !isCancel(err) {
		return domain.TraderProfile{}, err
	}
	p, ok := leaderboard.TraderProfile(wallet, res.States)
	if !ok {
		return domain.TraderProfile{}, fmt.Errorf("trader %s: %w", wallet, storage.ErrNotFound)
	}
	return p, nil
}

// Report builds the library-wide report.
func (o *Orchestrator) Report(ctx context.Context, progress ingestion.Progress) (*reporting.Report, error) {
	return o.reports.Generate(ctx, progress)
}

// Watch polls one market until it ends or the returned handle is stopped.
func (o *Orchestrator) Watch(ctx context.Context, id string, onUpdate ingestion.UpdateFunc) (*ingestion.Watch, error) {
	s, err := o.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	return o.watcher.Watch(ctx, s, onUpdate), nil
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
