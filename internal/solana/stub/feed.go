package stub

import (
	"context"
	"sync"

	"battle-analytics/internal/solana"
)

// TransferFeed serves a fixed newest-first transaction list per address,
// paginated the way the enhanced API paginates.
type TransferFeed struct {
	mu           sync.Mutex
	Transactions map[string][]solana.EnhancedTransaction
	// FailOnCall makes the n-th call (1-based) return Err. Zero disables it.
	FailOnCall int
	Err        error
	Requests   []solana.TransfersOpts
}

// NewTransferFeed creates an empty stub feed.
func NewTransferFeed() *TransferFeed {
	return &TransferFeed{
		Transactions: make(map[string][]solana.EnhancedTransaction),
	}
}

// AddTransactions appends records for address.
func (f *TransferFeed) AddTransactions(address string, txs ...solana.EnhancedTransaction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Transactions[address] = append(f.Transactions[address], txs...)
}

// GetTransfers returns the page after opts.Before.
func (f *TransferFeed) GetTransfers(_ context.Context, address string, opts solana.TransfersOpts) ([]solana.EnhancedTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, opts)
	if f.FailOnCall > 0 && len(f.Requests) == f.FailOnCall {
		return nil, f.Err
	}

	all := f.Transactions[address]
	start := 0
	if opts.Before != "" {
		start = len(all)
		for i, tx := range all {
			if tx.Signature == opts.Before {
				start = i + 1
				break
			}
		}
	}

	end := len(all)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	page := make([]solana.EnhancedTransaction, end-start)
	copy(page, all[start:end])
	return page, nil
}

// RequestCount returns the number of pages requested so far.
func (f *TransferFeed) RequestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}
