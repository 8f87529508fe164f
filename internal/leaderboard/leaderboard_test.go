package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battle-analytics/internal/domain"
)

const eps = 1e-9

var day = 24 * time.Hour

func market(id string, created time.Time, a, b string, balA, balB, volA, volB float64) *domain.MarketState {
	return &domain.MarketState{
		Summary: domain.MarketSummary{
			ID:        id,
			CreatedAt: created,
			ArtistA:   domain.Side{Name: a, Wallet: a + "-wallet"},
			ArtistB:   domain.Side{Name: b, Wallet: b + "-wallet"},
		},
		Account: domain.AccountRecord{BalanceA: balA, BalanceB: balB},
		Attribution: domain.TransferAttribution{
			TotalVolume: volA + volB,
			VolumeA:     volA,
			VolumeB:     volB,
		},
	}
}

func TestAggregateArtists(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	states := []*domain.MarketState{
		market("m1", t0, "Alice", "Bob", 120, 80, 1000, 500),
		// same artist, different spacing and case
		market("m2", t0.Add(day), " bob ", "ALICE", 10, 30, 100, 200),
	}

	rows := AggregateArtists(states, 200)
	require.Len(t, rows, 2)

	alice := rows[0]
	assert.Equal(t, "Alice", alice.ArtistName)
	assert.Equal(t, "Alice-wallet", alice.WalletAddress)
	assert.Equal(t, 2, alice.BattlesParticipated)
	assert.Equal(t, 2, alice.Wins)
	assert.Equal(t, 0, alice.Losses)
	assert.InDelta(t, 100.0, alice.WinRate, eps)
	// m1: 10 + 4.0, m2: 2 + 0.5
	assert.InDelta(t, 16.5, alice.TotalEarningsSOL, eps)
	assert.InDelta(t, 16.5*200, alice.TotalEarningsUSD, eps)
	assert.InDelta(t, 1_100_000, float64(alice.StreamEquivalents), 1)
	assert.InDelta(t, 1200.0, alice.TotalVolumeGenerated, eps)
	assert.InDelta(t, 14.0, alice.BestBattleEarnings, eps)
	assert.Equal(t, "Bob", alice.BestBattleOpponent)

	require.Len(t, alice.History, 2)
	assert.Equal(t, "m2", alice.History[0].BattleID, "history is most recent first")
	assert.Equal(t, " bob ", alice.History[0].OpponentName)
	assert.InDelta(t, 2.0, alice.History[0].TradingFees, eps)
	assert.InDelta(t, 0.5, alice.History[0].SettlementFees, eps)

	bob := rows[1]
	assert.Equal(t, 2, bob.BattlesParticipated)
	assert.Equal(t, 0, bob.Wins)
	assert.Equal(t, 2, bob.Losses)
	assert.Equal(t, 0.0, bob.WinRate)
	// m1: 5 + 1.6, m1 loser pool 80; m2: 1 + 0.2
	assert.InDelta(t, 7.8, bob.TotalEarningsSOL, eps)
	for _, h := range bob.History {
		assert.Equal(t, domain.OutcomeLoss, h.Result)
	}
}

func TestAggregateArtists_SortedByEarnings(t *testing.T) {
	t0 := time.Now()
	rows := AggregateArtists([]*domain.MarketState{
		market("m1", t0, "Small", "Big", 1, 2, 0, 1000),
	}, 180)

	require.Len(t, rows, 2)
	assert.Equal(t, "Big", rows[0].ArtistName)
	assert.GreaterOrEqual(t, rows[0].TotalEarningsSOL, rows[1].TotalEarningsSOL)
}

func TestAggregateArtists_Empty(t *testing.T) {
	assert.Empty(t, AggregateArtists(nil, 180))
}

func TestActivity(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	summaries := []domain.MarketSummary{
		{CreatedAt: t0, ArtistA: domain.Side{Name: "Alice", Avatar: "a.png"}, ArtistB: domain.Side{Name: "Bob"}},
		{CreatedAt: t0.Add(2 * day), ArtistA: domain.Side{Name: "alice"}, ArtistB: domain.Side{Name: "Carol"}},
		{CreatedAt: t0.Add(day), ArtistA: domain.Side{Name: "Bob", Avatar: "b.png"}, ArtistB: domain.Side{Name: "ALICE "}},
	}

	rows := Activity(summaries)
	require.Len(t, rows, 3)

	assert.Equal(t, "Alice", rows[0].Name)
	assert.Equal(t, 3, rows[0].TotalBattles)
	assert.Equal(t, "a.png", rows[0].Avatar)
	assert.True(t, rows[0].LastActive.Equal(t0.Add(2*day)))

	assert.Equal(t, "Bob", rows[1].Name)
	assert.Equal(t, 2, rows[1].TotalBattles)
	assert.Equal(t, "b.png", rows[1].Avatar)

	assert.Equal(t, "Carol", rows[2].Name)
	assert.Equal(t, 1, rows[2].TotalBattles)
}

func withTraders(s *domain.MarketState, flows ...domain.TraderFlow) *domain.MarketState {
	s.Attribution.Traders = make(map[string]*domain.TraderFlow)
	for i := range flows {
		f := flows[i]
		s.Attribution.Traders[f.Wallet] = &f
	}
	return s
}

func TestAggregateTraders(t *testing.T) {
	t0 := time.Now()
	states := []*domain.MarketState{
		withTraders(market("m1", t0, "A", "B", 1, 1, 0, 0),
			domain.TraderFlow{Wallet: "w1", Invested: 10, Received: 15},
			domain.TraderFlow{Wallet: "w2", Invested: 5, Received: 0},
		),
		withTraders(market("m2", t0, "A", "B", 1, 1, 0, 0),
			domain.TraderFlow{Wallet: "w1", Invested: 10, Received: 8},
			domain.TraderFlow{Wallet: "w3", Received: 1},
		),
	}

	rows := AggregateTraders(states)
	require.Len(t, rows, 3)

	assert.Equal(t, "w1", rows[0].WalletAddress)
	assert.InDelta(t, 20.0, rows[0].TotalInvested, eps)
	assert.InDelta(t, 23.0, rows[0].TotalPayout, eps)
	assert.InDelta(t, 3.0, rows[0].NetPnL, eps)
	assert.InDelta(t, 15.0, rows[0].ROI, eps)
	assert.Equal(t, 2, rows[0].BattlesParticipated)
	assert.Equal(t, 1, rows[0].Wins)
	assert.Equal(t, 1, rows[0].Losses)
	assert.InDelta(t, 50.0, rows[0].WinRate, eps)

	// no investment: ROI guarded
	assert.Equal(t, "w3", rows[1].WalletAddress)
	assert.Equal(t, 0.0, rows[1].ROI)

	assert.Equal(t, "w2", rows[2].WalletAddress)
	assert.InDelta(t, -100.0, rows[2].ROI, eps)
}

func TestTraderProfile(t *testing.T) {
	t0 := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	older := withTraders(market("old", t0, "A", "B", 1, 1, 0, 0),
		domain.TraderFlow{Wallet: "w1", Invested: 4, Received: 1})
	newer := withTraders(market("new", t0.Add(day), "C", "D", 1, 1, 0, 0),
		domain.TraderFlow{Wallet: "w1", Invested: 2, Received: 5})
	newer.Summary.ImageURL = "cover.png"
	other := withTraders(market("other", t0, "E", "F", 1, 1, 0, 0),
		domain.TraderFlow{Wallet: "w2", Invested: 1})

	p, ok := TraderProfile("w1", []*domain.MarketState{older, other, newer})
	require.True(t, ok)

	assert.Equal(t, "w1", p.WalletAddress)
	assert.InDelta(t, 0.0, p.NetPnL, eps)
	assert.Equal(t, 2, p.BattlesParticipated)

	require.Len(t, p.History, 2)
	assert.Equal(t, "new", p.History[0].BattleID)
	assert.Equal(t, "C", p.History[0].ArtistAName)
	assert.Equal(t, "cover.png", p.History[0].ImageURL)
	assert.Equal(t, domain.OutcomeWin, p.History[0].Outcome)
	assert.InDelta(t, 3.0, p.History[0].PnL, eps)
	assert.Equal(t, domain.OutcomeLoss, p.History[1].Outcome)
	// old: -3, then new: +3
	assert.InDelta(t, 3.0, p.MaxDrawdown, eps)
	assert.Equal(t, 1, p.MaxLosingStreak)

	_, ok = TraderProfile("nobody", []*domain.MarketState{older})
	assert.False(t, ok)
}
