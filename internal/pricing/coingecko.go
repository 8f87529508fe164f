// Package pricing quotes the SOL/USD price used for fiat conversions.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"battle-analytics/internal/observability"
)

// Quote defaults.
const (
	DefaultURL       = "https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd"
	FallbackSOLPrice = 180.0
	DefaultTimeout   = 10 * time.Second
	DefaultMaxAge    = 5 * time.Minute
)

// CoinGecko fetches the SOL price from the CoinGecko simple price endpoint.
// Successful quotes are reused for MaxAge.
type CoinGecko struct {
	url    string
	client *http.Client
	maxAge time.Duration
	now    func() time.Time
	logger *zap.Logger

	mu       sync.Mutex
	price    float64
	quotedAt time.Time
}

// Options contains configuration for creating a CoinGecko client.
type Options struct {
	URL        string
	HTTPClient *http.Client
	MaxAge     time.Duration // negative disables reuse
	Now        func() time.Time
	Logger     *zap.Logger
}

// NewCoinGecko creates a new price client.
func NewCoinGecko(opts Options) *CoinGecko {
	c := &CoinGecko{
		url:    opts.URL,
		client: opts.HTTPClient,
		maxAge: opts.MaxAge,
		now:    opts.Now,
		logger: opts.Logger,
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.maxAge == 0 {
		c.maxAge = DefaultMaxAge
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

type simplePrice struct {
	Solana struct {
		USD float64 `json:"usd"`
	} `json:"solana"`
}

// SOLPrice returns the SOL/USD price. Any failure yields FallbackSOLPrice,
// never an error.
func (c *CoinGecko) SOLPrice(ctx context.Context) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.price > 0 && c.maxAge > 0 && c.now().Sub(c.quotedAt) < c.maxAge {
		return c.price
	}

	price, err := c.fetch(ctx)
	if err != nil {
		observability.RecordPriceFallback()
		c.logger.Warn("sol price unavailable, using fallback",
			zap.Float64("fallback", FallbackSOLPrice),
			zap.Error(err),
		)
		return FallbackSOLPrice
	}

	c.price = price
	c.quotedAt = c.now()
	return price
}

func (c *CoinGecko) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("http status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	var p simplePrice
	if err := json.Unmarshal(body, &p); err != nil {
		return 0, fmt.Errorf("unmarshal response: %w", err)
	}
	if p.Solana.USD <= 0 {
		return 0, fmt.Errorf("missing solana usd price")
	}
	return p.Solana.USD, nil
}
