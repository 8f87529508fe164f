package memory

import (
	"context"
	"sort"
	"sync"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/storage"
)

// MarketLibrary is an in-memory implementation of storage.MarketLibrary.
type MarketLibrary struct {
	mu   sync.RWMutex
	data map[string]domain.MarketSummary // keyed by market id
}

// NewMarketLibrary creates a library holding the given summaries. Later
// duplicates of an id replace earlier ones.
func NewMarketLibrary(summaries ...domain.MarketSummary) *MarketLibrary {
	l := &MarketLibrary{data: make(map[string]domain.MarketSummary, len(summaries))}
	for _, s := range summaries {
		l.data[s.ID] = s
	}
	return l
}

// Compile-time interface check.
var _ storage.MarketLibrary = (*MarketLibrary)(nil)

// Add inserts or replaces a summary.
func (l *MarketLibrary) Add(s domain.MarketSummary) error {
	if s.ID == "" {
		return storage.ErrInvalidInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.data[s.ID] = s
	return nil
}

// List returns all summaries ordered by CreatedAt DESC, then id.
func (l *MarketLibrary) List(_ context.Context) ([]domain.MarketSummary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.MarketSummary, 0, len(l.data))
	for _, s := range l.data {
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// GetByID retrieves a summary by its id. Returns ErrNotFound if not exists.
func (l *MarketLibrary) GetByID(_ context.Context, marketID string) (domain.MarketSummary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.data[marketID]
	if !ok {
		return domain.MarketSummary{}, storage.ErrNotFound
	}
	return s, nil
}
