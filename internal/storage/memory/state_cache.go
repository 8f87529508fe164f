package memory

import (
	"context"
	"sync"
	"time"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/storage"
)

// DefaultTTL is how long a cached market state stays fresh.
const DefaultTTL = 30 * time.Second

type cacheEntry struct {
	state     *domain.MarketState
	fetchedAt time.Time
}

// StateCache is an in-memory implementation of storage.StateCache.
type StateCache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]cacheEntry // keyed by market id
}

// CacheOption configures a StateCache.
type CacheOption func(*StateCache)

// WithClock overrides the time source used for TTL checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *StateCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewStateCache creates an in-memory cache. A non-positive ttl uses DefaultTTL.
func NewStateCache(ttl time.Duration, opts ...CacheOption) *StateCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &StateCache{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ storage.StateCache = (*StateCache)(nil)

// Get returns the cached state if it is younger than the TTL.
func (c *StateCache) Get(_ context.Context, marketID string) (*domain.MarketState, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[marketID]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false, nil
	}

	stateCopy := *e.state
	return &stateCopy, true, nil
}

// Put stores a copy of the state stamped with the current time.
func (c *StateCache) Put(_ context.Context, state *domain.MarketState) error {
	if state == nil || state.Summary.ID == "" {
		return storage.ErrInvalidInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stateCopy := *state
	c.data[state.Summary.ID] = cacheEntry{state: &stateCopy, fetchedAt: c.now()}
	return nil
}

// Invalidate drops the entry for a market.
func (c *StateCache) Invalidate(_ context.Context, marketID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, marketID)
	return nil
}

// Len returns the number of entries, including expired ones.
func (c *StateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
