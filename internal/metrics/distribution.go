// Package metrics summarizes the spread of trader outcomes across a library.
package metrics

import (
	"math"
	"sort"

	"battle-analytics/internal/domain"
)

// Distribution describes the net PnL of a set of wallets, in SOL.
type Distribution struct {
	Traders int `json:"traders"`
	Winners int `json:"winners"`
	Losers  int `json:"losers"`
	// WinRate is Winners / Traders, in [0, 1].
	WinRate float64 `json:"winRate"`

	Mean   float64 `json:"mean"`
	Stddev float64 `json:"stddev"`
	Median float64 `json:"median"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`

	// TotalInvested and TotalPayout sum over every wallet.
	TotalInvested float64 `json:"totalInvested"`
	TotalPayout   float64 `json:"totalPayout"`
}

// TraderPnL computes the distribution of net PnL over the leaderboard rows.
// A wallet is a winner when its net PnL is strictly positive.
func TraderPnL(entries []domain.TraderEntry) Distribution {
	n := len(entries)
	if n == 0 {
		return Distribution{}
	}

	pnl := make([]float64, n)
	d := Distribution{Traders: n}
	for i, e := range entries {
		pnl[i] = e.NetPnL
		d.TotalInvested += e.TotalInvested
		d.TotalPayout += e.TotalPayout
		if e.NetPnL > 0 {
			d.Winners++
		} else {
			d.Losers++
		}
	}
	sort.Float64s(pnl)

	d.WinRate = float64(d.Winners) / float64(n)
	d.Mean = mean(pnl)
	d.Stddev = stddev(pnl, d.Mean)
	d.Median = percentile(pnl, 0.50)
	d.P10 = percentile(pnl, 0.10)
	d.P25 = percentile(pnl, 0.25)
	d.P75 = percentile(pnl, 0.75)
	d.P90 = percentile(pnl, 0.90)
	d.Min = pnl[0]
	d.Max = pnl[n-1]
	return d
}

// MaxDrawdown is the worst peak-to-trough fall of the cumulative PnL of a
// trader history. History must be in chronological order.
func MaxDrawdown(history []domain.TraderBattleRecord) float64 {
	cumulative, peak, worst := 0.0, 0.0, 0.0
	for _, h := range history {
		cumulative += h.PnL
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > worst {
			worst = dd
		}
	}
	return worst
}

// MaxLosingStreak is the longest run of markets with PnL <= 0.
// History must be in chronological order.
func MaxLosingStreak(history []domain.TraderBattleRecord) int {
	longest, current := 0, 0
	for _, h := range history {
		if h.PnL > 0 {
			current = 0
			continue
		}
		current++
		if current > longest {
			longest = current
		}
	}
	return longest
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the sample standard deviation (n-1 denominator).
func stddev(xs []float64, m float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// percentile interpolates linearly between closest ranks.
// sorted must be ascending; p is in [0, 1].
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
