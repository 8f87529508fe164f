package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/settlement"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Battle Market Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Markets: %d loaded of %d | SOL price: %s\n\n", len(r.Markets), r.MarketCount, FormatUSD(r.SOLPrice)))
	if r.Partial {
		sb.WriteString("**Partial report:** loading was cancelled before every market was fetched.\n\n")
	}

	// Markets
	sb.WriteString("## Markets\n\n")
	if len(r.Markets) > 0 {
		sb.WriteString("| Market | Artist A | Artist B | TVL A | TVL B | Volume | Trades | Leader | Loser Pool | Status |\n")
		sb.WriteString("|--------|----------|----------|-------|-------|--------|--------|--------|------------|--------|\n")
		for _, m := range r.Markets {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %d | %s | %s | %s |\n",
				m.ID, escape(m.ArtistA), escape(m.ArtistB),
				FormatSOL(m.TVLA), FormatSOL(m.TVLB), FormatSOL(m.VolumeA+m.VolumeB),
				m.TradeCount, m.Settlement.Winner, FormatSOL(m.Settlement.LoserPoolTotal),
				marketStatus(m)))
		}
	} else {
		sb.WriteString("No markets loaded.\n")
	}
	sb.WriteString("\n")

	// Failures
	if len(r.Failed) > 0 {
		sb.WriteString("### Failed Markets\n\n")
		ids := make([]string, 0, len(r.Failed))
		for id := range r.Failed {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", id, r.Failed[id]))
		}
		sb.WriteString("\n")
	}

	// Artist leaderboard
	sb.WriteString("## Artist Earnings\n\n")
	if len(r.Artists) > 0 {
		sb.WriteString("| # | Artist | Battles | W/L | Win Rate | Volume | Earnings | USD | Streams |\n")
		sb.WriteString("|---|--------|---------|-----|----------|--------|----------|-----|---------|\n")
		for i, a := range r.Artists {
			sb.WriteString(fmt.Sprintf("| %d | %s | %d | %d/%d | %s | %s | %s | %s | %d |\n",
				i+1, escape(a.ArtistName), a.BattlesParticipated, a.Wins, a.Losses,
				FormatPct(a.WinRate), FormatSOL(a.TotalVolumeGenerated),
				FormatSOL(a.TotalEarningsSOL), FormatUSD(a.TotalEarningsUSD), a.StreamEquivalents))
		}
	} else {
		sb.WriteString("No artist data available.\n")
	}
	sb.WriteString("\n")

	// Activity
	sb.WriteString("## Artist Activity\n\n")
	if len(r.Activity) > 0 {
		sb.WriteString("| Artist | Battles | Last Active |\n")
		sb.WriteString("|--------|---------|-------------|\n")
		for _, a := range r.Activity {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n",
				escape(a.Name), a.TotalBattles, a.LastActive.UTC().Format("2006-01-02")))
		}
	} else {
		sb.WriteString("No activity recorded.\n")
	}
	sb.WriteString("\n")

	// Traders
	sb.WriteString("## Traders\n\n")
	if len(r.Traders) > 0 {
		d := r.TraderPnL
		sb.WriteString(fmt.Sprintf("Wallets: %d | Profitable: %d (%s) | Median PnL: %s | P10/P90: %s / %s\n\n",
			d.Traders, d.Winners, FormatPct(d.WinRate*100), FormatSOL(d.Median), FormatSOL(d.P10), FormatSOL(d.P90)))
		sb.WriteString("| # | Wallet | Invested | Payout | Net PnL | ROI | Battles | Win Rate |\n")
		sb.WriteString("|---|--------|----------|--------|---------|-----|---------|----------|\n")
		for i, t := range r.Traders {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %d | %s |\n",
				i+1, t.WalletAddress, FormatSOL(t.TotalInvested), FormatSOL(t.TotalPayout),
				FormatSOL(t.NetPnL), FormatPct(t.ROI), t.BattlesParticipated, FormatPct(t.WinRate)))
		}
	} else {
		sb.WriteString("No trader flows observed.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// RenderMarket renders the state of one market with its settlement.
func RenderMarket(state *domain.MarketState, whaleThreshold float64) string {
	res := settlement.Settle(state)
	s := state.Summary
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s vs %s\n\n", s.ArtistA.Name, s.ArtistB.Name))
	sb.WriteString(fmt.Sprintf("Market: %s | Battle: %d | Address: %s\n\n", s.ID, s.BattleID, state.Addresses.Market))
	if !state.Found {
		sb.WriteString("**Battle account not found on-chain; showing zero state.**\n\n")
	}
	if state.Attribution.Degraded {
		sb.WriteString("**Transfer scan incomplete; volumes are partial.**\n\n")
	}

	sb.WriteString("## State\n\n")
	sb.WriteString("| Metric | A | B |\n")
	sb.WriteString("|--------|---|---|\n")
	sb.WriteString(fmt.Sprintf("| TVL | %s | %s |\n", FormatSOL(state.Account.BalanceA), FormatSOL(state.Account.BalanceB)))
	sb.WriteString(fmt.Sprintf("| Supply | %.2f | %.2f |\n", state.Account.SupplyA, state.Account.SupplyB))
	sb.WriteString(fmt.Sprintf("| Volume | %s | %s |\n", FormatSOL(state.Attribution.VolumeA), FormatSOL(state.Attribution.VolumeB)))
	sb.WriteString(fmt.Sprintf("| Fees earned | %s | %s |\n", FormatSOL(res.ArtistAEarnings), FormatSOL(res.ArtistBEarnings)))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Trades: %d | Traders: %d | Momentum A: %s | Ended: %t\n\n",
		state.Attribution.TradeCount, state.Attribution.UniqueTraders,
		FormatPct(settlement.Momentum(state.Attribution.VolumeA, state.Attribution.VolumeB)),
		state.Account.Ended))

	sb.WriteString(RenderSettlement(res))

	whales := domain.WhaleTrades(state.Attribution.RecentTrades, whaleThreshold)
	sb.WriteString("## Whale Trades\n\n")
	if len(whales) > 0 {
		sb.WriteString("| Time | Type | Amount | Trader | Signature |\n")
		sb.WriteString("|------|------|--------|--------|-----------|\n")
		for _, w := range whales {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				time.UnixMilli(w.Timestamp).UTC().Format(time.RFC3339), w.Type,
				FormatSOL(w.Amount), w.Trader, w.Signature))
		}
	} else {
		sb.WriteString(fmt.Sprintf("No trades above %s.\n", FormatSOL(whaleThreshold)))
	}
	sb.WriteString("\n")

	return sb.String()
}

// RenderSettlement renders the prize-pool distribution.
func RenderSettlement(res domain.SettlementResult) string {
	var sb strings.Builder

	sb.WriteString("## Settlement\n\n")
	sb.WriteString(fmt.Sprintf("Winner: %s | Margin: %s | Loser pool: %s\n\n",
		res.Winner, FormatSOL(res.WinMargin), FormatSOL(res.LoserPoolTotal)))
	sb.WriteString("| Recipient | Share | Amount |\n")
	sb.WriteString("|-----------|-------|--------|\n")
	rows := []struct {
		name   string
		share  float64
		amount float64
	}{
		{"Winning traders", settlement.WinningTradersShare, res.ToWinningTraders},
		{"Winning artist", settlement.WinningArtistShare, res.ToWinningArtist},
		{"Losing artist", settlement.LosingArtistShare, res.ToLosingArtist},
		{"Platform", settlement.PlatformShare, res.ToPlatform},
		{"Losing traders", settlement.LosingTradersShare, res.ToLosingTraders},
	}
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", r.name, FormatPct(r.share*100), FormatSOL(r.amount)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Platform earnings: %s\n\n", FormatSOL(res.PlatformEarnings)))

	return sb.String()
}

// RenderSimulation renders a trader ROI simulation.
func RenderSimulation(sim settlement.Simulation) string {
	var sb strings.Builder
	sb.WriteString("## ROI Simulation\n\n")
	sb.WriteString("| Side | Invested | Tokens | Share | Payout | Profit | ROI |\n")
	sb.WriteString("|------|----------|--------|-------|--------|--------|-----|\n")
	sb.WriteString(fmt.Sprintf("| %s | %s | %.4f | %s | %s | %s | %s |\n",
		sim.Side, FormatSOL(sim.Invested), sim.Tokens, FormatPct(sim.Share*100),
		FormatSOL(sim.Payout), FormatSOL(sim.Profit), FormatPct(sim.ROIPercent)))
	sb.WriteString("\n")
	if sim.Note != "" {
		sb.WriteString(sim.Note + "\n\n")
	}
	return sb.String()
}

func marketStatus(m MarketRow) string {
	switch {
	case !m.Found:
		return "NOT FOUND"
	case m.Degraded:
		return "PARTIAL"
	case m.Ended:
		return "ENDED"
	default:
		return "LIVE"
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
