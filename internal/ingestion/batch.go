package ingestion

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/observability"
)

// Batch defaults. The delay spaces batches out to stay under upstream rate limits.
const (
	DefaultBatchSize  = 2
	DefaultBatchDelay = time.Second
)

// BatchLoader fetches many markets in fixed-size concurrent batches.
type BatchLoader struct {
	fetcher   MarketFetcher
	batchSize int
	delay     time.Duration
	logger    *zap.Logger
}

// BatchOptions contains configuration for creating a BatchLoader.
type BatchOptions struct {
	BatchSize int           // default DefaultBatchSize
	Delay     time.Duration // default DefaultBatchDelay, negative disables
	Logger    *zap.Logger
}

// NewBatchLoader creates a new BatchLoader.
func NewBatchLoader(fetcher MarketFetcher, opts BatchOptions) *BatchLoader {
	b := &BatchLoader{
		fetcher:   fetcher,
		batchSize: opts.BatchSize,
		delay:     opts.Delay,
		logger:    opts.Logger,
	}
	if b.batchSize <= 0 {
		b.batchSize = DefaultBatchSize
	}
	if b.delay == 0 {
		b.delay = DefaultBatchDelay
	}
	if b.delay < 0 {
		b.delay = 0
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// BatchResult holds the outcome of a batch load.
type BatchResult struct {
	// States holds the fetched states in input order, skipping failures.
	States []*domain.MarketState
	// Failed maps market id to its fetch error.
	Failed map[string]error
	// Completed is the number of summaries that were attempted.
	Completed int
}

// Progress is called after every batch with the number of summaries attempted so far.
type Progress func(completed, total int)

// Load fetches all summaries. A failed market is recorded in Failed and does
// not stop the load.
//
// Cancellation is checked between batches: once ctx is done no further batch
// starts, fetches already running complete, and the partial result is
// returned with ctx.Err().
func (b *BatchLoader) Load(ctx context.Context, summaries []domain.MarketSummary, progress Progress) (BatchResult, error) {
	res := BatchResult{Failed: make(map[string]error)}
	states := make([]*domain.MarketState, len(summaries))

	// in-flight fetches outlive cancellation of ctx
	fetchCtx := context.WithoutCancel(ctx)

	var err error
	for start := 0; start < len(summaries); start += b.batchSize {
		if err = ctx.Err(); err != nil {
			break
		}

		end := min(start+b.batchSize, len(summaries))
		b.runBatch(fetchCtx, summaries[start:end], states[start:end], res.Failed)
		res.Completed = end
		observability.RecordBatch()
		if progress != nil {
			progress(end, len(summaries))
		}

		if end < len(summaries) && b.delay > 0 {
			timer := time.NewTimer(b.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}
	if err == nil && res.Completed < len(summaries) {
		err = ctx.Err()
	}

	for _, s := range states {
		if s != nil {
			res.States = append(res.States, s)
		}
	}

	if err != nil {
		b.logger.Info("batch load cancelled",
			zap.Int("completed", res.Completed),
			zap.Int("total", len(summaries)),
		)
	}
	return res, err
}

func (b *BatchLoader) runBatch(ctx context.Context, batch []domain.MarketSummary, out []*domain.MarketState, failed map[string]error) {
	var (
		g  errgroup.Group
		mu sync.Mutex
	)

	observability.AddInFlight(len(batch))
	defer observability.AddInFlight(-len(batch))

	for i := range batch {
		summary := batch[i]
		g.Go(func() error {
			state, err := b.fetcher.Fetch(ctx, summary, false)
			if err != nil {
				b.logger.Warn("market fetch failed", zap.String("market", summary.ID), zap.Error(err))
				mu.Lock()
				failed[summary.ID] = err
				mu.Unlock()
				return nil
			}
			out[i] = state
			return nil
		})
	}
	_ = g.Wait()
}
