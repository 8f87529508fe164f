package leaderboard

import (
	"sort"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/metrics"
)

type traderTotals struct {
	invested float64
	payout   float64
	battles  int
	wins     int
	losses   int
}

// AggregateTraders folds the per-market wallet flows into the trader
// leaderboard, sorted by net PnL descending, then by wallet. A market counts
// as a win for a wallet when it received more than it invested there.
func AggregateTraders(states []*domain.MarketState) []domain.TraderEntry {
	totals := make(map[string]*traderTotals)

	for _, state := range states {
		if state == nil {
			continue
		}
		for wallet, flow := range state.Attribution.Traders {
			if flow == nil {
				continue
			}
			t, ok := totals[wallet]
			if !ok {
				t = &traderTotals{}
				totals[wallet] = t
			}
			t.invested += flow.Invested
			t.payout += flow.Received
			t.battles++
			if flow.Received-flow.Invested > 0 {
				t.wins++
			} else {
				t.losses++
			}
		}
	}

	out := make([]domain.TraderEntry, 0, len(totals))
	for wallet, t := range totals {
		out = append(out, entry(wallet, t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NetPnL != out[j].NetPnL {
			return out[i].NetPnL > out[j].NetPnL
		}
		return out[i].WalletAddress < out[j].WalletAddress
	})
	return out
}

func entry(wallet string, t *traderTotals) domain.TraderEntry {
	e := domain.TraderEntry{
		WalletAddress:       wallet,
		TotalInvested:       t.invested,
		TotalPayout:         t.payout,
		NetPnL:              t.payout - t.invested,
		BattlesParticipated: t.battles,
		Wins:                t.wins,
		Losses:              t.losses,
	}
	if t.invested > 0 {
		e.ROI = e.NetPnL / t.invested * 100
	}
	if t.battles > 0 {
		e.WinRate = float64(t.wins) / float64(t.battles) * 100
	}
	return e
}

// TraderProfile returns the drill-down of one wallet with its per-market
// history, most recent first. ok is false when the wallet never traded.
func TraderProfile(wallet string, states []*domain.MarketState) (domain.TraderProfile, bool) {
	t := &traderTotals{}
	history := []domain.TraderBattleRecord{}

	for _, state := range states {
		if state == nil {
			continue
		}
		flow, ok := state.Attribution.Traders[wallet]
		if !ok || flow == nil {
			continue
		}

		pnl := flow.Received - flow.Invested
		outcome := domain.OutcomeLoss
		if pnl > 0 {
			outcome = domain.OutcomeWin
			t.wins++
		} else {
			t.losses++
		}
		t.invested += flow.Invested
		t.payout += flow.Received
		t.battles++

		history = append(history, domain.TraderBattleRecord{
			BattleID:    state.Summary.ID,
			ArtistAName: state.Summary.ArtistA.Name,
			ArtistBName: state.Summary.ArtistB.Name,
			ImageURL:    state.Summary.ImageURL,
			Date:        state.Summary.CreatedAt,
			Invested:    flow.Invested,
			Payout:      flow.Received,
			PnL:         pnl,
			Outcome:     outcome,
		})
	}

	if t.battles == 0 {
		return domain.TraderProfile{}, false
	}

	chrono := make([]domain.TraderBattleRecord, len(history))
	copy(chrono, history)
	sort.SliceStable(chrono, func(i, j int) bool {
		return chrono[i].Date.Before(chrono[j].Date)
	})
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})
	return domain.TraderProfile{
		TraderEntry:     entry(wallet, t),
		History:         history,
		MaxDrawdown:     metrics.MaxDrawdown(chrono),
		MaxLosingStreak: metrics.MaxLosingStreak(chrono),
	}, true
}
