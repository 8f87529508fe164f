package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Alice", "alice"},
		{"  Alice  ", "alice"},
		{"DJ   Big\tFoot", "dj big foot"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), tt.in)
	}
	assert.Equal(t, Side{Name: " The Band "}.Key(), Side{Name: "the  band"}.Key())
}

func TestSideID_Opposite(t *testing.T) {
	assert.Equal(t, SideB, SideA.Opposite())
	assert.Equal(t, SideA, SideB.Opposite())
	assert.Equal(t, SideUnknown, SideUnknown.Opposite())
}

func TestNewZeroState(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	s := NewZeroState(MarketSummary{ID: "m1", Duration: 3600}, Addresses{Market: "m", Vault: "v"}, now)

	assert.False(t, s.Found)
	assert.False(t, s.Account.Ended)
	assert.Equal(t, 0.0, s.Account.BalanceA)
	assert.Equal(t, 0.0, s.Account.BalanceB)
	assert.Equal(t, now.UnixMilli(), s.Account.StartTime)
	assert.Equal(t, now.UnixMilli()+3_600_000, s.Account.EndTime)
	assert.NotNil(t, s.Attribution.RecentTrades)
	assert.Equal(t, "v", s.Addresses.Vault)
}

func TestNewMarketState(t *testing.T) {
	now := time.Now()
	s := NewMarketState(MarketSummary{ID: "m1"}, AccountRecord{BalanceA: 2}, TransferAttribution{VolumeA: 1}, Addresses{}, now)

	require.True(t, s.Found)
	assert.NotNil(t, s.Attribution.RecentTrades)
	assert.Equal(t, 2.0, s.Account.Balance(SideA))
	assert.Equal(t, 1.0, s.Volume(SideA))
	assert.Equal(t, 0.0, s.Volume(SideB))
}

func TestWhaleTrades(t *testing.T) {
	trades := []RecentTrade{
		{Signature: "a", Amount: 0.5},
		{Signature: "b", Amount: 0.51},
		{Signature: "c", Amount: 3},
		{Signature: "d", Amount: 0.1},
	}

	whales := WhaleTrades(trades, DefaultWhaleThreshold)
	require.Len(t, whales, 2)
	assert.Equal(t, "b", whales[0].Signature)
	assert.Equal(t, "c", whales[1].Signature)
}
