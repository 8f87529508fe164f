package storage

import (
	"context"

	"battle-analytics/internal/domain"
)

// StateCache holds recently fetched market states for a bounded time.
// Implementations are safe for concurrent use.
type StateCache interface {
	// Get returns the cached state for a market id. ok is false when the entry
	// is missing or older than the cache TTL.
	Get(ctx context.Context, marketID string) (state *domain.MarketState, ok bool, err error)

	// Put stores a state under its summary id, replacing any previous entry.
	Put(ctx context.Context, state *domain.MarketState) error

	// Invalidate drops the entry for a market id. Missing entries are not an error.
	Invalidate(ctx context.Context, marketID string) error
}

// MarketLibrary provides the externally supplied market summaries.
type MarketLibrary interface {
	// List returns all summaries, most recently created first.
	List(ctx context.Context) ([]domain.MarketSummary, error)

	// GetByID retrieves a summary by its id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, marketID string) (domain.MarketSummary, error)
}
