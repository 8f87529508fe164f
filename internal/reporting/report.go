// Package reporting builds market reports and renders them as Markdown or CSV.
package reporting

import (
	"time"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/metrics"
)

// Report is the snapshot of a whole market library.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	SOLPrice    float64
	MarketCount int

	// Markets in library order, with their settlement
	Markets []MarketRow

	// Leaderboards
	Artists  []domain.ArtistLeaderboardStats
	Activity []domain.ArtistActivity
	Traders  []domain.TraderEntry

	// TraderPnL summarizes the spread of net PnL over Traders.
	TraderPnL metrics.Distribution

	// Failed maps market id to the error that kept it out of the report.
	Failed map[string]string
	// Partial is set when the load was cancelled before every market was fetched.
	Partial bool
}

// MarketRow is one market of the report.
type MarketRow struct {
	ID          string
	ArtistA     string
	ArtistB     string
	CreatedAt   time.Time
	TVLA        float64
	TVLB        float64
	VolumeA     float64
	VolumeB     float64
	TradeCount  int
	Ended       bool
	Found       bool
	Degraded    bool
	Settlement  domain.SettlementResult
	MomentumPct float64
}
