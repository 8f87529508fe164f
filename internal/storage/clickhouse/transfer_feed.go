package clickhouse

import (
	"context"
	"fmt"
	"time"

	"battle-analytics/internal/observability"
	"battle-analytics/internal/solana"
	"battle-analytics/internal/storage"
)

// DefaultLimit is the page size used when the caller passes none.
const DefaultLimit = 50

// TransferFeed serves the enhanced-transaction feed of an address from the
// native_transfers table, newest transaction first. One row holds one
// transaction with its transfers as parallel arrays.
type TransferFeed struct {
	conn *Conn
}

// NewTransferFeed creates a new TransferFeed.
func NewTransferFeed(conn *Conn) *TransferFeed {
	return &TransferFeed{conn: conn}
}

type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// InsertBulk appends transactions for an address. Re-inserting a signature
// replaces the earlier row on merge.
func (f *TransferFeed) InsertBulk(ctx context.Context, address string, txs []solana.EnhancedTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	if address == "" {
		return storage.ErrInvalidInput
	}

	batch, err := f.conn.PrepareBatch(ctx, `
		INSERT INTO native_transfers (
			address, signature, slot, timestamp, from_accounts, to_accounts, amounts
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, tx := range txs {
		from := make([]string, len(tx.NativeTransfers))
		to := make([]string, len(tx.NativeTransfers))
		amounts := make([]int64, len(tx.NativeTransfers))
		for j, nt := range tx.NativeTransfers {
			from[j] = nt.FromUserAccount
			to[j] = nt.ToUserAccount
			amounts[j] = nt.Amount
		}
		if err := batch.Append(address, tx.Signature, tx.Slot, tx.Timestamp, from, to, amounts); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetTransfers returns up to opts.Limit transactions of address older than
// the opts.Before signature. An unknown cursor yields an empty page.
func (f *TransferFeed) GetTransfers(ctx context.Context, address string, opts solana.TransfersOpts) (txs []solana.EnhancedTransaction, err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "get_transfers", time.Since(start).Seconds(), err)
	}()

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	if opts.Before == "" {
		query := `
			SELECT signature, slot, timestamp, from_accounts, to_accounts, amounts
			FROM native_transfers FINAL
			WHERE address = ?
			ORDER BY slot DESC, signature DESC
			LIMIT ?
		`
		rows, err := f.conn.Query(ctx, query, address, uint64(limit))
		if err != nil {
			return nil, fmt.Errorf("query transfers: %w", err)
		}
		defer rows.Close()
		return scanTransactions(rows)
	}

	var cursorSlot uint64
	var found uint64
	err = f.conn.QueryRow(ctx, `
		SELECT count(*), max(slot) FROM native_transfers
		WHERE address = ? AND signature = ?
	`, address, opts.Before).Scan(&found, &cursorSlot)
	if err != nil {
		return nil, fmt.Errorf("query cursor: %w", err)
	}
	if found == 0 {
		return []solana.EnhancedTransaction{}, nil
	}

	query := `
		SELECT signature, slot, timestamp, from_accounts, to_accounts, amounts
		FROM native_transfers FINAL
		WHERE address = ?
		  AND (slot < ? OR (slot = ? AND signature < ?))
		ORDER BY slot DESC, signature DESC
		LIMIT ?
	`
	rows, err := f.conn.Query(ctx, query, address, cursorSlot, cursorSlot, opts.Before, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("query transfers: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// scanTransactions scans multiple rows.
func scanTransactions(rows chRows) ([]solana.EnhancedTransaction, error) {
	txs := []solana.EnhancedTransaction{}

	for rows.Next() {
		var tx solana.EnhancedTransaction
		var from, to []string
		var amounts []int64

		if err := rows.Scan(&tx.Signature, &tx.Slot, &tx.Timestamp, &from, &to, &amounts); err != nil {
			return nil, fmt.Errorf("scan transfer row: %w", err)
		}
		if len(from) != len(to) || len(to) != len(amounts) {
			return nil, fmt.Errorf("transfer row %s: mismatched array lengths", tx.Signature)
		}

		tx.NativeTransfers = make([]solana.NativeTransfer, len(from))
		for i := range from {
			tx.NativeTransfers[i] = solana.NativeTransfer{
				FromUserAccount: from[i],
				ToUserAccount:   to[i],
				Amount:          amounts[i],
			}
		}
		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer rows: %w", err)
	}
	return txs, nil
}
