package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/ingestion"
	"battle-analytics/internal/leaderboard"
	"battle-analytics/internal/metrics"
	"battle-analytics/internal/settlement"
	"battle-analytics/internal/storage"
)

// StateLoader fetches the states of many markets.
type StateLoader interface {
	Load(ctx context.Context, summaries []domain.MarketSummary, progress ingestion.Progress) (ingestion.BatchResult, error)
}

// PriceSource quotes the SOL/USD price.
type PriceSource interface {
	SOLPrice(ctx context.Context) float64
}

// Generator produces reports from the market library.
type Generator struct {
	library storage.MarketLibrary
	loader  StateLoader
	prices  PriceSource
	now     func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(library storage.MarketLibrary, loader StateLoader, prices PriceSource) *Generator {
	return &Generator{
		library: library,
		loader:  loader,
		prices:  prices,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads every market of the library and builds the report.
// A cancelled load still yields a report over the markets fetched so far,
// flagged Partial.
func (g *Generator) Generate(ctx context.Context, progress ingestion.Progress) (*Report, error) {
	summaries, err := g.library.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}

	res, loadErr := g.loader.Load(ctx, summaries, progress)
	if loadErr != nil && !errors.Is(loadErr, context.Canceled) && !errors.Is(loadErr, context.DeadlineExceeded) {
		return nil, fmt.Errorf("load markets: %w", loadErr)
	}

	price := g.prices.SOLPrice(context.WithoutCancel(ctx))
	return Build(summaries, res, price, g.now()), nil
}

// Build assembles a report from loaded states.
func Build(summaries []domain.MarketSummary, res ingestion.BatchResult, solPrice float64, now time.Time) *Report {
	r := &Report{
		GeneratedAt: now,
		SOLPrice:    solPrice,
		MarketCount: len(summaries),
		Markets:     make([]MarketRow, 0, len(res.States)),
		Activity:    leaderboard.Activity(summaries),
		Failed:      make(map[string]string, len(res.Failed)),
		Partial:     res.Completed < len(summaries),
	}

	for _, state := range res.States {
		r.Markets = append(r.Markets, marketRow(state))
	}
	for id, err := range res.Failed {
		r.Failed[id] = err.Error()
	}

	r.Artists = leaderboard.AggregateArtists(res.States, solPrice)
	r.Traders = leaderboard.AggregateTraders(res.States)
	r.TraderPnL = metrics.TraderPnL(r.Traders)
	return r
}

func marketRow(state *domain.MarketState) MarketRow {
	return MarketRow{
		ID:          state.Summary.ID,
		ArtistA:     state.Summary.ArtistA.Name,
		ArtistB:     state.Summary.ArtistB.Name,
		CreatedAt:   state.Summary.CreatedAt,
		TVLA:        state.Account.BalanceA,
		TVLB:        state.Account.BalanceB,
		VolumeA:     state.Attribution.VolumeA,
		VolumeB:     state.Attribution.VolumeB,
		TradeCount:  state.Attribution.TradeCount,
		Ended:       state.Account.Ended,
		Found:       state.Found,
		Degraded:    state.Attribution.Degraded,
		Settlement:  settlement.Settle(state),
		MomentumPct: settlement.Momentum(state.Attribution.VolumeA, state.Attribution.VolumeB),
	}
}
