// Package scanner reconstructs trading activity of a market from its
// transfer feed.
//
// A transfer into the market or its vault is a BUY by the sender; a transfer
// out of either is a SELL to the receiver. Everything else in a record is
// ignored. Per-side volume is not observable in the feed and is split by a
// SplitStrategy.
package scanner

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/observability"
	"battle-analytics/internal/solana"
)

// Default scan bounds.
const (
	DefaultPageSize    = 50
	DefaultMaxRecords  = 100
	DefaultRecentLimit = 20
)

// TransferFeed pages parsed transactions for an address, newest first.
type TransferFeed interface {
	GetTransfers(ctx context.Context, address string, opts solana.TransfersOpts) ([]solana.EnhancedTransaction, error)
}

// Config bounds a scan.
type Config struct {
	PageSize    int
	MaxRecords  int
	RecentLimit int
	Split       SplitStrategy
}

// DefaultConfig returns the default scan bounds with a TVL-proportional split.
func DefaultConfig() Config {
	return Config{
		PageSize:    DefaultPageSize,
		MaxRecords:  DefaultMaxRecords,
		RecentLimit: DefaultRecentLimit,
		Split:       TVLProportional{},
	}
}

// Request identifies the market to scan.
type Request struct {
	Market   string
	Vault    string
	BalanceA float64
	BalanceB float64
}

// Scanner builds TransferAttribution values from a TransferFeed.
type Scanner struct {
	feed   TransferFeed
	cfg    Config
	logger *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the scanner logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a scanner. Zero config fields take their defaults.
func New(feed TransferFeed, cfg Config, opts ...Option) *Scanner {
	def := DefaultConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = def.MaxRecords
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = def.RecentLimit
	}
	if cfg.Split == nil {
		cfg.Split = def.Split
	}

	s := &Scanner{feed: feed, cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan pages the market's feed and classifies its transfers.
//
// A page failure stops the loop. The attribution accumulated so far is still
// returned, marked Degraded, together with the error; callers decide whether
// to surface it.
func (s *Scanner) Scan(ctx context.Context, req Request) (domain.TransferAttribution, error) {
	acc := newAccumulator(req, s.cfg.RecentLimit)

	var (
		cursor  string
		fetched int
		scanErr error
	)
	for fetched < s.cfg.MaxRecords {
		page, err := s.feed.GetTransfers(ctx, req.Market, solana.TransfersOpts{
			Before: cursor,
			Limit:  s.cfg.PageSize,
		})
		if err != nil {
			scanErr = fmt.Errorf("transfer page after %q: %w", cursor, err)
			break
		}
		observability.RecordScanPage(len(page))
		if len(page) == 0 {
			break
		}

		for i := range page {
			acc.add(&page[i])
			cursor = page[i].Signature
		}
		fetched += len(page)

		if len(page) < s.cfg.PageSize {
			break
		}
	}

	attr := acc.result(s.cfg.Split)
	if scanErr != nil {
		attr.Degraded = true
		observability.RecordDegradedScan()
		s.logger.Warn("transfer scan degraded",
			zap.String("market", req.Market),
			zap.Int("records", fetched),
			zap.Error(scanErr),
		)
		return attr, scanErr
	}

	s.logger.Debug("transfer scan complete",
		zap.String("market", req.Market),
		zap.Int("records", fetched),
		zap.Int("trades", attr.TradeCount),
	)
	return attr, nil
}

type accumulator struct {
	market, vault string
	balanceA      float64
	balanceB      float64
	recentLimit   int

	tradeCount int
	volume     float64
	recent     []domain.RecentTrade
	traders    map[string]*domain.TraderFlow
}

func newAccumulator(req Request, recentLimit int) *accumulator {
	return &accumulator{
		market:      req.Market,
		vault:       req.Vault,
		balanceA:    req.BalanceA,
		balanceB:    req.BalanceB,
		recentLimit: recentLimit,
		recent:      []domain.RecentTrade{},
		traders:     make(map[string]*domain.TraderFlow),
	}
}

func (a *accumulator) owns(addr string) bool {
	return addr != "" && (addr == a.vault || addr == a.market)
}

// add folds one feed record. A record counts once when any of its transfers
// classify; direction and trader come from the last classified transfer.
func (a *accumulator) add(tx *solana.EnhancedTransaction) {
	var (
		value     float64
		trader    string
		tradeType domain.TradeType
		touched   = map[string]bool{}
	)

	for _, t := range tx.NativeTransfers {
		amount := math.Abs(float64(t.Amount)) / solana.LamportsPerSOL

		switch {
		case a.owns(t.ToUserAccount):
			value += amount
			trader = t.FromUserAccount
			tradeType = domain.TradeBuy
			if f := a.flow(trader); f != nil {
				f.Invested += amount
			}
		case a.owns(t.FromUserAccount):
			value += amount
			trader = t.ToUserAccount
			tradeType = domain.TradeSell
			if f := a.flow(trader); f != nil {
				f.Received += amount
			}
		default:
			continue
		}
		if trader != "" {
			touched[trader] = true
		}
	}

	if value <= 0 || trader == "" {
		return
	}

	a.tradeCount++
	a.volume += value
	for w := range touched {
		a.traders[w].Trades++
	}
	observability.RecordTrade(string(tradeType))

	if len(a.recent) < a.recentLimit {
		a.recent = append(a.recent, domain.RecentTrade{
			Signature: tx.Signature,
			Amount:    value,
			Side:      domain.SideUnknown,
			Type:      tradeType,
			Timestamp: tx.Timestamp * 1000,
			Trader:    trader,
		})
	}
}

func (a *accumulator) flow(wallet string) *domain.TraderFlow {
	if wallet == "" {
		return nil
	}
	f, ok := a.traders[wallet]
	if !ok {
		f = &domain.TraderFlow{Wallet: wallet}
		a.traders[wallet] = f
	}
	return f
}

func (a *accumulator) result(split SplitStrategy) domain.TransferAttribution {
	volA, volB := split.Split(a.volume, a.balanceA, a.balanceB)
	return domain.TransferAttribution{
		TradeCount:    a.tradeCount,
		UniqueTraders: len(a.traders),
		RecentTrades:  a.recent,
		TotalVolume:   a.volume,
		VolumeA:       volA,
		VolumeB:       volB,
		Traders:       a.traders,
	}
}
