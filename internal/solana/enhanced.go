package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"battle-analytics/internal/observability"
)

// DefaultEnhancedURL is the base URL of the Helius parsed-transaction API.
const DefaultEnhancedURL = "https://api-mainnet.helius-rpc.com"

// EnhancedClient reads parsed transactions for an address from the Helius
// enhanced-transactions API.
type EnhancedClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	retry   RetryPolicy
}

// NewEnhancedClient creates a client for baseURL authenticated with apiKey.
func NewEnhancedClient(baseURL, apiKey string, opts ...ClientOption) *EnhancedClient {
	if baseURL == "" {
		baseURL = DefaultEnhancedURL
	}
	cfg := newClientConfig(opts)
	return &EnhancedClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  cfg.client,
		retry:   cfg.retry,
	}
}

// GetTransfers returns one page of transactions touching address, newest first.
func (c *EnhancedClient) GetTransfers(ctx context.Context, address string, opts TransfersOpts) ([]EnhancedTransaction, error) {
	q := url.Values{}
	if c.apiKey != "" {
		q.Set("api-key", c.apiKey)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Before != "" {
		q.Set("before", opts.Before)
	}
	endpoint := fmt.Sprintf("%s/v0/addresses/%s/transactions/?%s", c.baseURL, url.PathEscape(address), q.Encode())

	start := time.Now()
	defer func() {
		observability.RecordRPCLatency("addressTransactions", time.Since(start).Seconds())
	}()

	var txs []EnhancedTransaction
	err := Retry(ctx, c.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		body, err := doRequest(c.client, req)
		if err != nil {
			return err
		}

		txs = nil
		if err := json.Unmarshal(body, &txs); err != nil {
			return fmt.Errorf("unmarshal transactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}
