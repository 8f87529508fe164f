package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/storage"
)

// DefaultTTL is the key expiry applied to cached market states.
const DefaultTTL = 30 * time.Second

// StateCache implements storage.StateCache with JSON values under
// "battle:state:{id}" and Redis key expiry as the TTL.
type StateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStateCache creates a StateCache. A non-positive ttl uses DefaultTTL.
func NewStateCache(c *Client, ttl time.Duration) *StateCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &StateCache{rdb: c.rdb, ttl: ttl}
}

// Compile-time interface check.
var _ storage.StateCache = (*StateCache)(nil)

func stateKey(id string) string { return "battle:state:" + id }

// Get returns the cached state, or ok=false when the key has expired.
func (c *StateCache) Get(ctx context.Context, marketID string) (*domain.MarketState, bool, error) {
	data, err := c.rdb.Get(ctx, stateKey(marketID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis: get state %s: %w", marketID, err)
	}

	var state domain.MarketState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, false, fmt.Errorf("redis: unmarshal state %s: %w", marketID, err)
	}
	return &state, true, nil
}

// Put stores the state with the cache TTL.
func (c *StateCache) Put(ctx context.Context, state *domain.MarketState) error {
	if state == nil || state.Summary.ID == "" {
		return storage.ErrInvalidInput
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("redis: marshal state %s: %w", state.Summary.ID, err)
	}
	if err := c.rdb.Set(ctx, stateKey(state.Summary.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set state %s: %w", state.Summary.ID, err)
	}
	return nil
}

// Invalidate deletes the cached state.
func (c *StateCache) Invalidate(ctx context.Context, marketID string) error {
	if err := c.rdb.Del(ctx, stateKey(marketID)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate state %s: %w", marketID, err)
	}
	return nil
}
