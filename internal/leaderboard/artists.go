// Package leaderboard folds market states into per-artist and per-trader
// cumulative statistics.
package leaderboard

import (
	"math"
	"sort"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/settlement"
)

// USDPerStream is the fiat payout of one streaming play, used to express
// earnings as stream equivalents.
const USDPerStream = 0.003

// AggregateArtists builds the earnings leaderboard, sorted by total SOL
// earnings descending. Artists are keyed by normalized display name.
func AggregateArtists(states []*domain.MarketState, solPrice float64) []domain.ArtistLeaderboardStats {
	byKey := make(map[string]*domain.ArtistLeaderboardStats)
	var order []string

	get := func(side domain.Side) *domain.ArtistLeaderboardStats {
		key := side.Key()
		st, ok := byKey[key]
		if !ok {
			st = &domain.ArtistLeaderboardStats{
				ArtistName:    side.Name,
				WalletAddress: side.Wallet,
				Avatar:        side.Avatar,
				Twitter:       side.Twitter,
				MusicLink:     side.MusicLink,
				History:       []domain.ArtistBattleRecord{},
			}
			byKey[key] = st
			order = append(order, key)
			return st
		}
		fillIdentity(st, side)
		return st
	}

	for _, state := range states {
		if state == nil {
			continue
		}
		res := settlement.Settle(state)
		for _, id := range []domain.SideID{domain.SideA, domain.SideB} {
			self := state.Summary.SideByID(id)
			opponent := state.Summary.SideByID(id.Opposite())
			st := get(self)

			trading, settle := settlement.ArtistFees(state, res, id)
			total := trading + settle
			volume := state.Volume(id)

			outcome := domain.OutcomeLoss
			if res.Winner == id {
				outcome = domain.OutcomeWin
				st.Wins++
			} else {
				st.Losses++
			}
			st.BattlesParticipated++
			st.TotalVolumeGenerated += volume
			st.TotalEarningsSOL += total
			st.History = append(st.History, domain.ArtistBattleRecord{
				BattleID:        state.Summary.ID,
				OpponentName:    opponent.Name,
				Date:            state.Summary.CreatedAt,
				Result:          outcome,
				VolumeGenerated: volume,
				TradingFees:     trading,
				SettlementFees:  settle,
				TotalEarnings:   total,
			})
			if total > st.BestBattleEarnings {
				st.BestBattleEarnings = total
				st.BestBattleOpponent = opponent.Name
			}
		}
	}

	out := make([]domain.ArtistLeaderboardStats, 0, len(order))
	for _, key := range order {
		st := byKey[key]
		if st.BattlesParticipated > 0 {
			st.WinRate = float64(st.Wins) / float64(st.BattlesParticipated) * 100
		}
		st.TotalEarningsUSD = st.TotalEarningsSOL * solPrice
		st.StreamEquivalents = int64(math.Floor(st.TotalEarningsUSD / USDPerStream))
		sort.SliceStable(st.History, func(i, j int) bool {
			return st.History[i].Date.After(st.History[j].Date)
		})
		out = append(out, *st)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalEarningsSOL > out[j].TotalEarningsSOL
	})
	return out
}

// fillIdentity copies identity fields the first occurrence left blank.
func fillIdentity(st *domain.ArtistLeaderboardStats, side domain.Side) {
	if st.WalletAddress == "" {
		st.WalletAddress = side.Wallet
	}
	if st.Avatar == "" {
		st.Avatar = side.Avatar
	}
	if st.Twitter == "" {
		st.Twitter = side.Twitter
	}
	if st.MusicLink == "" {
		st.MusicLink = side.MusicLink
	}
}

// Activity builds the participation leaderboard from summaries alone, sorted
// by number of markets descending, then by name.
func Activity(summaries []domain.MarketSummary) []domain.ArtistActivity {
	byKey := make(map[string]*domain.ArtistActivity)

	touch := func(side domain.Side, s domain.MarketSummary) {
		key := side.Key()
		a, ok := byKey[key]
		if !ok {
			a = &domain.ArtistActivity{Name: side.Name, Avatar: side.Avatar}
			byKey[key] = a
		}
		if a.Avatar == "" {
			a.Avatar = side.Avatar
		}
		a.TotalBattles++
		if s.CreatedAt.After(a.LastActive) {
			a.LastActive = s.CreatedAt
		}
	}

	for _, s := range summaries {
		touch(s.ArtistA, s)
		touch(s.ArtistB, s)
	}

	out := make([]domain.ArtistActivity, 0, len(byKey))
	for _, a := range byKey {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalBattles != out[j].TotalBattles {
			return out[i].TotalBattles > out[j].TotalBattles
		}
		return domain.NormalizeName(out[i].Name) < domain.NormalizeName(out[j].Name)
	})
	return out
}
