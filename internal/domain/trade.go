package domain

// TradeType is the direction of a classified transfer relative to the market.
type TradeType string

// Trade directions.
const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// DefaultWhaleThreshold is the SOL amount above which a trade is shown as a whale trade.
const DefaultWhaleThreshold = 0.5

// RecentTrade is one classified record of the transfer feed.
type RecentTrade struct {
	Signature string    `json:"signature"`
	Amount    float64   `json:"amount"` // SOL, absolute
	Side      SideID    `json:"artistId"`
	Type      TradeType `json:"type"`
	Timestamp int64     `json:"timestamp"` // ms
	Trader    string    `json:"trader"`
}

// TraderFlow accumulates one wallet's flows within a single market.
type TraderFlow struct {
	Wallet   string  `json:"wallet"`
	Invested float64 `json:"invested"` // SOL sent into the market
	Received float64 `json:"received"` // SOL paid out of the market
	Trades   int     `json:"trades"`
}

// TransferAttribution is the accumulated result of scanning one market's transfer feed.
type TransferAttribution struct {
	TradeCount    int                    `json:"tradeCount"`
	UniqueTraders int                    `json:"uniqueTraders"`
	RecentTrades  []RecentTrade          `json:"recentTrades"`
	TotalVolume   float64                `json:"totalVolume"`
	VolumeA       float64                `json:"totalVolumeA"`
	VolumeB       float64                `json:"totalVolumeB"`
	Traders       map[string]*TraderFlow `json:"traders,omitempty"`

	// Degraded is set when the scan stopped early on a feed failure.
	Degraded bool `json:"degraded"`
}

// WhaleTrades returns the trades strictly above threshold, preserving order.
func WhaleTrades(trades []RecentTrade, threshold float64) []RecentTrade {
	var out []RecentTrade
	for _, t := range trades {
		if t.Amount > threshold {
			out = append(out, t)
		}
	}
	return out
}
