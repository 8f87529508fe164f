package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// WriteMarketsCSV writes one row per loaded market.
func WriteMarketsCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	header := []string{
		"market_id", "artist_a", "artist_b", "created_at",
		"tvl_a", "tvl_b", "volume_a", "volume_b", "trade_count",
		"winner", "loser_pool", "momentum_pct", "status",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range r.Markets {
		row := []string{
			m.ID, m.ArtistA, m.ArtistB, m.CreatedAt.UTC().Format(time.RFC3339),
			formatFloat(m.TVLA), formatFloat(m.TVLB),
			formatFloat(m.VolumeA), formatFloat(m.VolumeB),
			strconv.Itoa(m.TradeCount),
			string(m.Settlement.Winner), formatFloat(m.Settlement.LoserPoolTotal),
			formatFloat(m.MomentumPct), marketStatus(m),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write market %s: %w", m.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteArtistsCSV writes the artist earnings leaderboard.
func WriteArtistsCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	header := []string{
		"rank", "artist", "wallet", "battles", "wins", "losses", "win_rate",
		"volume_sol", "earnings_sol", "earnings_usd", "stream_equivalents",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, a := range r.Artists {
		row := []string{
			strconv.Itoa(i + 1), a.ArtistName, a.WalletAddress,
			strconv.Itoa(a.BattlesParticipated), strconv.Itoa(a.Wins), strconv.Itoa(a.Losses),
			formatFloat(a.WinRate), formatFloat(a.TotalVolumeGenerated),
			formatFloat(a.TotalEarningsSOL), formatFloat(a.TotalEarningsUSD),
			strconv.FormatInt(a.StreamEquivalents, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write artist %s: %w", a.ArtistName, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTradersCSV writes the trader leaderboard.
func WriteTradersCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	header := []string{
		"rank", "wallet", "invested_sol", "payout_sol", "net_pnl_sol",
		"roi_pct", "battles", "wins", "losses", "win_rate",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, t := range r.Traders {
		row := []string{
			strconv.Itoa(i + 1), t.WalletAddress,
			formatFloat(t.TotalInvested), formatFloat(t.TotalPayout), formatFloat(t.NetPnL),
			formatFloat(t.ROI), strconv.Itoa(t.BattlesParticipated),
			strconv.Itoa(t.Wins), strconv.Itoa(t.Losses), formatFloat(t.WinRate),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write trader %s: %w", t.WalletAddress, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
