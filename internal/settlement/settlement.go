// Package settlement computes the prize-pool distribution of a market and
// simulated returns for hypothetical positions.
package settlement

import (
	"math"

	"battle-analytics/internal/domain"
)

// Pool distribution shares of the loser's pool. They sum to exactly 1.
const (
	WinningTradersShare = 0.40
	WinningArtistShare  = 0.05
	LosingArtistShare   = 0.02
	PlatformShare       = 0.03
	LosingTradersShare  = 0.50
)

// Trading fee rates, charged on attributed volume independently of settlement.
const (
	ArtistFeeRate   = 0.01
	PlatformFeeRate = 0.005
)

// TieWinner is the side awarded the win on equal balances.
const TieWinner = domain.SideA

// Winner returns the side with the strictly greater balance, TieWinner on a tie.
func Winner(balanceA, balanceB float64) domain.SideID {
	switch {
	case balanceA > balanceB:
		return domain.SideA
	case balanceB > balanceA:
		return domain.SideB
	default:
		return TieWinner
	}
}

// Settle derives the distribution of a market from its current balances and
// attributed volume. It is pure: equal states give identical results.
func Settle(state *domain.MarketState) domain.SettlementResult {
	balA, balB := state.Account.BalanceA, state.Account.BalanceB
	volA, volB := state.Attribution.VolumeA, state.Attribution.VolumeB

	winner := Winner(balA, balB)
	loserPool := balB
	if winner == domain.SideB {
		loserPool = balA
	}

	res := domain.SettlementResult{
		Winner:           winner,
		WinMargin:        math.Abs(balA - balB),
		LoserPoolTotal:   loserPool,
		ToWinningTraders: loserPool * WinningTradersShare,
		ToWinningArtist:  loserPool * WinningArtistShare,
		ToLosingArtist:   loserPool * LosingArtistShare,
		ToPlatform:       loserPool * PlatformShare,
		ToLosingTraders:  loserPool * LosingTradersShare,
	}

	feeA := volA * ArtistFeeRate
	feeB := volB * ArtistFeeRate
	if winner == domain.SideA {
		res.ArtistAEarnings = feeA + res.ToWinningArtist
		res.ArtistBEarnings = feeB + res.ToLosingArtist
	} else {
		res.ArtistAEarnings = feeA + res.ToLosingArtist
		res.ArtistBEarnings = feeB + res.ToWinningArtist
	}
	res.PlatformEarnings = (volA+volB)*PlatformFeeRate + res.ToPlatform

	return res
}

// ArtistFees returns the trading fee and the settlement share earned by side
// in a settled market.
func ArtistFees(state *domain.MarketState, res domain.SettlementResult, side domain.SideID) (tradingFee, settlementFee float64) {
	tradingFee = state.Volume(side) * ArtistFeeRate
	if res.Winner == side {
		return tradingFee, res.ToWinningArtist
	}
	return tradingFee, res.ToLosingArtist
}

// Momentum returns side A's share of attributed volume in percent.
// Zero total volume yields 0.
func Momentum(volumeA, volumeB float64) float64 {
	total := volumeA + volumeB
	if total == 0 {
		total = 1
	}
	return volumeA / total * 100
}
