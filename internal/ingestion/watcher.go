package ingestion

import (
	"context"
	"time"

	"go.uber.org/zap"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/observability"
)

// DefaultPollInterval is the refresh period of a watched market.
const DefaultPollInterval = 15 * time.Second

// UpdateFunc receives every refresh of a watched market. err is set when a
// refresh failed; the watch keeps polling.
type UpdateFunc func(state *domain.MarketState, err error)

// Watcher polls markets on a fixed interval.
type Watcher struct {
	fetcher  MarketFetcher
	interval time.Duration
	logger   *zap.Logger
}

// WatcherOptions contains configuration for creating a Watcher.
type WatcherOptions struct {
	Interval time.Duration // default DefaultPollInterval
	Logger   *zap.Logger
}

// NewWatcher creates a new Watcher.
func NewWatcher(fetcher MarketFetcher, opts WatcherOptions) *Watcher {
	w := &Watcher{
		fetcher:  fetcher,
		interval: opts.Interval,
		logger:   opts.Logger,
	}
	if w.interval <= 0 {
		w.interval = DefaultPollInterval
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	return w
}

// Watch is the handle of one polling task.
type Watch struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the task. It does not wait; use Done for that. Safe to call
// more than once and from inside the update callback.
func (w *Watch) Stop() {
	w.cancel()
}

// Done is closed once the task has exited.
func (w *Watch) Done() <-chan struct{} {
	return w.done
}

// Watch starts polling summary. The first fetch may be served from cache;
// later ones bypass it. The task ends when ctx is done, when Stop is called,
// or after delivering a state whose market has ended.
func (w *Watcher) Watch(ctx context.Context, summary domain.MarketSummary, onUpdate UpdateFunc) *Watch {
	ctx, cancel := context.WithCancel(ctx)
	h := &Watch{cancel: cancel, done: make(chan struct{})}

	go w.run(ctx, summary, onUpdate, h)
	return h
}

func (w *Watcher) run(ctx context.Context, summary domain.MarketSummary, onUpdate UpdateFunc, h *Watch) {
	defer close(h.done)
	defer h.cancel()

	observability.AddActiveWatches(1)
	defer observability.AddActiveWatches(-1)

	log := w.logger.With(zap.String("market", summary.ID))
	log.Debug("watch started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	force := false
	for {
		state, err := w.fetcher.Fetch(ctx, summary, force)
		force = true
		if ctx.Err() != nil {
			log.Debug("watch stopped")
			return
		}
		if err != nil {
			log.Warn("watch refresh failed", zap.Error(err))
		}
		onUpdate(state, err)

		if err == nil && state.Account.Ended {
			log.Info("market ended, watch finished")
			return
		}

		select {
		case <-ctx.Done():
			log.Debug("watch stopped")
			return
		case <-ticker.C:
		}
	}
}
