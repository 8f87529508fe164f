package settlement

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battle-analytics/internal/domain"
)

const eps = 1e-9

var testNow = time.Unix(1_700_000_000, 0)

func state(balA, balB, volA, volB float64) *domain.MarketState {
	return &domain.MarketState{
		Account: domain.AccountRecord{BalanceA: balA, BalanceB: balB},
		Attribution: domain.TransferAttribution{
			TotalVolume: volA + volB,
			VolumeA:     volA,
			VolumeB:     volB,
		},
	}
}

func TestSettle_Distribution(t *testing.T) {
	res := Settle(state(120, 80, 1000, 500))

	assert.Equal(t, domain.SideA, res.Winner)
	assert.InDelta(t, 40.0, res.WinMargin, eps)
	assert.InDelta(t, 80.0, res.LoserPoolTotal, eps)
	assert.InDelta(t, 32.0, res.ToWinningTraders, eps)
	assert.InDelta(t, 4.0, res.ToWinningArtist, eps)
	assert.InDelta(t, 1.6, res.ToLosingArtist, eps)
	assert.InDelta(t, 2.4, res.ToPlatform, eps)
	assert.InDelta(t, 40.0, res.ToLosingTraders, eps)
	assert.InDelta(t, 14.0, res.ArtistAEarnings, eps)
	assert.InDelta(t, 6.6, res.ArtistBEarnings, eps)
	assert.InDelta(t, 9.9, res.PlatformEarnings, eps)
}

func TestSettle_SideBWins(t *testing.T) {
	res := Settle(state(30, 70, 200, 400))

	assert.Equal(t, domain.SideB, res.Winner)
	assert.InDelta(t, 30.0, res.LoserPoolTotal, eps)
	assert.InDelta(t, 200*0.01+30*0.02, res.ArtistAEarnings, eps)
	assert.InDelta(t, 400*0.01+30*0.05, res.ArtistBEarnings, eps)
}

func TestSettle_TieGoesToA(t *testing.T) {
	res := Settle(state(50, 50, 0, 0))

	assert.Equal(t, domain.SideA, res.Winner)
	assert.Equal(t, TieWinner, res.Winner)
	assert.Equal(t, 0.0, res.WinMargin)
	assert.InDelta(t, 50.0, res.LoserPoolTotal, eps)
}

func TestSettle_ComponentsSumToLoserPool(t *testing.T) {
	cases := [][2]float64{{120, 80}, {0, 0}, {0.1, 0.2}, {1e6, 3.3}, {123.456789, 987.654321}}
	for _, c := range cases {
		res := Settle(state(c[0], c[1], 10, 20))
		sum := res.ToWinningTraders + res.ToWinningArtist + res.ToLosingArtist + res.ToPlatform + res.ToLosingTraders
		assert.InDelta(t, res.LoserPoolTotal, sum, 1e-9*math.Max(1, res.LoserPoolTotal))
	}
	assert.InDelta(t, 1.0, WinningTradersShare+WinningArtistShare+LosingArtistShare+PlatformShare+LosingTradersShare, 1e-15)
}

func TestSettle_Idempotent(t *testing.T) {
	s := state(120.5, 80.25, 1000.1, 500.7)
	assert.Equal(t, Settle(s), Settle(s))
}

func TestSettle_ZeroState(t *testing.T) {
	res := Settle(domain.NewZeroState(domain.MarketSummary{Duration: 60}, domain.Addresses{}, testNow))
	assert.Equal(t, domain.SideA, res.Winner)
	assert.Equal(t, 0.0, res.LoserPoolTotal)
	assert.Equal(t, 0.0, res.PlatformEarnings)
}

func TestArtistFees(t *testing.T) {
	s := state(120, 80, 1000, 500)
	res := Settle(s)

	trading, settle := ArtistFees(s, res, domain.SideA)
	assert.InDelta(t, 10.0, trading, eps)
	assert.InDelta(t, 4.0, settle, eps)

	trading, settle = ArtistFees(s, res, domain.SideB)
	assert.InDelta(t, 5.0, trading, eps)
	assert.InDelta(t, 1.6, settle, eps)
}

func TestMomentum(t *testing.T) {
	assert.InDelta(t, 75.0, Momentum(3, 1), eps)
	assert.Equal(t, 0.0, Momentum(0, 0))
	assert.Equal(t, 100.0, Momentum(5, 0))
}

func TestSimulate_LosingSide(t *testing.T) {
	s := state(80, 120, 0, 0)
	s.Account.SupplyA = 1000

	sim := Simulate(s, domain.SideA, 10)

	assert.InDelta(t, 125.0, sim.Tokens, eps)
	assert.InDelta(t, 0.125, sim.Share, eps)
	assert.InDelta(t, 5.0, sim.Payout, eps)
	assert.InDelta(t, -5.0, sim.Profit, eps)
	assert.InDelta(t, -50.0, sim.ROIPercent, eps)
	assert.Equal(t, NoteLoser, sim.Note)
}

func TestSimulate_WinningSide(t *testing.T) {
	s := state(120, 80, 0, 0)
	s.Account.SupplyA = 1200

	sim := Simulate(s, domain.SideA, 12)

	// price 0.1, 120 tokens, share 0.1 of 120 own pool + 0.1 of 32
	require.InDelta(t, 120.0, sim.Tokens, eps)
	assert.InDelta(t, 12.0+3.2, sim.Payout, eps)
	assert.InDelta(t, 3.2, sim.Profit, eps)
	assert.InDelta(t, 3.2/12*100, sim.ROIPercent, eps)
	assert.Equal(t, NoteWinner, sim.Note)
}

func TestSimulate_ZeroInvestment(t *testing.T) {
	s := state(120, 80, 0, 0)
	s.Account.SupplyA = 1000

	sim := Simulate(s, domain.SideA, 0)
	assert.Equal(t, 0.0, sim.ROIPercent)
	assert.False(t, math.IsNaN(sim.Payout))
}

func TestSimulate_EmptyPool(t *testing.T) {
	sim := Simulate(state(0, 0, 0, 0), domain.SideB, 10)

	assert.Equal(t, 0.0, sim.Tokens)
	assert.Equal(t, 0.0, sim.Payout)
	assert.InDelta(t, -100.0, sim.ROIPercent, eps)
	assert.False(t, math.IsInf(sim.ROIPercent, 0))
}
