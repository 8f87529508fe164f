package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/storage"
)

// setupTestRedis starts a Redis container and returns a connected client.
func setupTestRedis(t *testing.T) *Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForLog("Ready to accept connections").WithStartupTimeout(60*time.Second),
				wait.ForListeningPort("6379/tcp"),
			),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := New(ctx, ClientConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, err, "failed to connect to redis")

	t.Cleanup(func() {
		_ = client.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})
	return client
}

func TestStateCache_RoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewStateCache(client, time.Minute)
	ctx := context.Background()

	fetched := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	state := domain.NewMarketState(
		domain.MarketSummary{ID: "m1", BattleID: 42, ArtistA: domain.Side{Name: "Alpha"}},
		domain.AccountRecord{BalanceA: 1.5, BalanceB: 0.25, EndTime: 1_700_000_000_000},
		domain.TransferAttribution{
			TradeCount:   1,
			TotalVolume:  2,
			VolumeA:      1.2,
			VolumeB:      0.8,
			RecentTrades: []domain.RecentTrade{{Signature: "sig", Amount: 2, Type: domain.TradeBuy, Side: domain.SideUnknown}},
			Traders:      map[string]*domain.TraderFlow{"w1": {Wallet: "w1", Invested: 2, Trades: 1}},
		},
		domain.Addresses{Market: "market", Vault: "vault"},
		fetched,
	)

	require.NoError(t, cache.Put(ctx, state))

	got, ok, err := cache.Get(ctx, "m1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(42), got.Summary.BattleID)
	assert.Equal(t, 1.5, got.Account.BalanceA)
	assert.Equal(t, "vault", got.Addresses.Vault)
	assert.True(t, got.FetchedAt.Equal(fetched))
	require.Len(t, got.Attribution.RecentTrades, 1)
	assert.Equal(t, domain.TradeBuy, got.Attribution.RecentTrades[0].Type)
	require.Contains(t, got.Attribution.Traders, "w1")
	assert.Equal(t, 2.0, got.Attribution.Traders["w1"].Invested)
}

func TestStateCache_MissAndInvalidate(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewStateCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, &domain.MarketState{Summary: domain.MarketSummary{ID: "m1"}}))
	require.NoError(t, cache.Invalidate(ctx, "m1"))

	_, ok, err = cache.Get(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStateCache_Expiry(t *testing.T) {
	client := setupTestRedis(t)
	cache := NewStateCache(client, time.Second)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, &domain.MarketState{Summary: domain.MarketSummary{ID: "m1"}}))

	assert.Eventually(t, func() bool {
		_, ok, err := cache.Get(ctx, "m1")
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}

func TestStateCache_InvalidInput(t *testing.T) {
	cache := &StateCache{}
	err := cache.Put(context.Background(), nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
