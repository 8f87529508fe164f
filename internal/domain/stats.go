package domain

import "time"

// SettlementResult is the derived prize-pool distribution of a market.
type SettlementResult struct {
	Winner         SideID  `json:"winnerId"`
	WinMargin      float64 `json:"winMargin"`
	LoserPoolTotal float64 `json:"loserPoolTotal"`

	// Distribution (absolute SOL)
	ToWinningTraders float64 `json:"toWinningTraders"`
	ToWinningArtist  float64 `json:"toWinningArtist"`
	ToLosingArtist   float64 `json:"toLosingArtist"`
	ToPlatform       float64 `json:"toPlatform"`
	ToLosingTraders  float64 `json:"toLosingTraders"`

	// Earnings
	ArtistAEarnings  float64 `json:"artistAEarnings"`
	ArtistBEarnings  float64 `json:"artistBEarnings"`
	PlatformEarnings float64 `json:"platformEarnings"`
}

// Outcome of a market for one participant.
type Outcome string

// Outcome values.
const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
)

// ArtistBattleRecord is one market in an artist's history.
type ArtistBattleRecord struct {
	BattleID        string    `json:"battleId"`
	OpponentName    string    `json:"opponentName"`
	Date            time.Time `json:"date"`
	Result          Outcome   `json:"result"`
	VolumeGenerated float64   `json:"volumeGenerated"`
	TradingFees     float64   `json:"tradingFees"`
	SettlementFees  float64   `json:"settlementFees"`
	TotalEarnings   float64   `json:"totalEarnings"`
}

// ArtistLeaderboardStats is one row of the earnings leaderboard.
type ArtistLeaderboardStats struct {
	ArtistName           string               `json:"artistName"`
	WalletAddress        string               `json:"walletAddress"`
	Avatar               string               `json:"avatar"`
	Twitter              string               `json:"twitter,omitempty"`
	MusicLink            string               `json:"musicLink,omitempty"`
	TotalEarningsSOL     float64              `json:"totalEarningsSol"`
	TotalEarningsUSD     float64              `json:"totalEarningsUsd"`
	StreamEquivalents    int64                `json:"spotifyStreamEquivalents"`
	BattlesParticipated  int                  `json:"battlesParticipated"`
	Wins                 int                  `json:"wins"`
	Losses               int                  `json:"losses"`
	WinRate              float64              `json:"winRate"`
	TotalVolumeGenerated float64              `json:"totalVolumeGenerated"`
	BestBattleEarnings   float64              `json:"bestBattleEarnings"`
	BestBattleOpponent   string               `json:"bestBattleOpponent"`
	History              []ArtistBattleRecord `json:"history"`
}

// ArtistActivity is one row of the activity leaderboard, computed from
// summaries alone when settlement data is not available.
type ArtistActivity struct {
	Name         string    `json:"name"`
	Avatar       string    `json:"avatar"`
	TotalBattles int       `json:"totalBattles"`
	LastActive   time.Time `json:"lastActive"`
}

// TraderEntry is one row of the trader leaderboard.
type TraderEntry struct {
	WalletAddress       string  `json:"walletAddress"`
	TotalInvested       float64 `json:"totalInvested"`
	TotalPayout         float64 `json:"totalPayout"`
	NetPnL              float64 `json:"netPnL"`
	ROI                 float64 `json:"roi"`
	BattlesParticipated int     `json:"battlesParticipated"`
	Wins                int     `json:"wins"`
	Losses              int     `json:"losses"`
	WinRate             float64 `json:"winRate"`
}

// TraderBattleRecord is one market in a trader's history.
type TraderBattleRecord struct {
	BattleID    string    `json:"battleId"`
	ArtistAName string    `json:"artistAName"`
	ArtistBName string    `json:"artistBName"`
	ImageURL    string    `json:"imageUrl"`
	Date        time.Time `json:"date"`
	Invested    float64   `json:"invested"`
	Payout      float64   `json:"payout"`
	PnL         float64   `json:"pnl"`
	Outcome     Outcome   `json:"outcome"`
}

// TraderProfile is the per-wallet drill-down of the trader leaderboard.
type TraderProfile struct {
	TraderEntry
	History []TraderBattleRecord `json:"history"`

	// MaxDrawdown is the worst fall of cumulative PnL in chronological order.
	MaxDrawdown     float64 `json:"maxDrawdown"`
	MaxLosingStreak int     `json:"maxLosingStreak"`
}

// BattleEvent groups the rounds of one head-to-head event.
type BattleEvent struct {
	ID               string          `json:"id"`
	ArtistA          Side            `json:"artistA"`
	ArtistB          Side            `json:"artistB"`
	Date             time.Time       `json:"date"`
	ImageURL         string          `json:"imageUrl"`
	IsCommunityEvent bool            `json:"isCommunityEvent"`
	Rounds           []MarketSummary `json:"rounds"`
}
