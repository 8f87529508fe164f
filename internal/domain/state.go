package domain

import "time"

// AccountRecord is the typed form of the on-chain battle account.
type AccountRecord struct {
	OnChainID         uint64  `json:"onChainId"`
	StartTime         int64   `json:"startTime"` // ms
	EndTime           int64   `json:"endTime"`   // ms
	Ended             bool    `json:"isEnded"`
	IsActive          bool    `json:"isActive"`
	BalanceA          float64 `json:"artistASolBalance"`
	BalanceB          float64 `json:"artistBSolBalance"`
	SupplyA           float64 `json:"artistASupply"`
	SupplyB           float64 `json:"artistBSupply"`
	WinnerDecided     bool    `json:"winnerDecided"`
	WinnerIsA         bool    `json:"winnerIsA"`
	TotalDistribution float64 `json:"totalDistribution"`
}

// Balance returns the pooled balance of a side.
func (r AccountRecord) Balance(side SideID) float64 {
	if side == SideB {
		return r.BalanceB
	}
	return r.BalanceA
}

// Supply returns the outstanding token supply of a side.
func (r AccountRecord) Supply(side SideID) float64 {
	if side == SideB {
		return r.SupplyB
	}
	return r.SupplyA
}

// Addresses holds the derived on-chain addresses of a market.
type Addresses struct {
	Market string `json:"battleAddress"`
	Vault  string `json:"vaultAddress"`
}

// MarketState is the unit every calculator consumes. It is never mutated after
// construction; refreshes replace it.
type MarketState struct {
	Summary     MarketSummary       `json:"summary"`
	Account     AccountRecord       `json:"account"`
	Attribution TransferAttribution `json:"attribution"`
	Addresses   Addresses           `json:"addresses"`
	Found       bool                `json:"found"`
	FetchedAt   time.Time           `json:"fetchedAt"`
}

// Volume returns the attributed volume of a side.
func (s *MarketState) Volume(side SideID) float64 {
	if side == SideB {
		return s.Attribution.VolumeB
	}
	return s.Attribution.VolumeA
}

// NewMarketState builds a state from a decoded account and a scan result.
// A nil RecentTrades slice is replaced by an empty one.
func NewMarketState(summary MarketSummary, account AccountRecord, attr TransferAttribution, addrs Addresses, fetchedAt time.Time) *MarketState {
	if attr.RecentTrades == nil {
		attr.RecentTrades = []RecentTrade{}
	}
	return &MarketState{
		Summary:     summary,
		Account:     account,
		Attribution: attr,
		Addresses:   addrs,
		Found:       true,
		FetchedAt:   fetchedAt,
	}
}

// NewZeroState builds the state used when the market account does not exist
// on-chain: all balances, supplies and volumes are zero, the market is not
// ended, and the window is [now, now+duration].
func NewZeroState(summary MarketSummary, addrs Addresses, now time.Time) *MarketState {
	start := now.UnixMilli()
	return &MarketState{
		Summary: summary,
		Account: AccountRecord{
			StartTime: start,
			EndTime:   start + summary.Duration*1000,
		},
		Attribution: TransferAttribution{RecentTrades: []RecentTrade{}},
		Addresses:   addrs,
		FetchedAt:   now,
	}
}
