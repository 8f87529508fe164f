package settlement

import "battle-analytics/internal/domain"

// Simulation notes.
const (
	NoteWinner = "Winner payout + share of loser pool"
	NoteLoser  = "Loser retains 50% of value"
)

// Simulation is the outcome of a hypothetical position.
type Simulation struct {
	Side       domain.SideID `json:"side"`
	Invested   float64       `json:"invested"`
	Tokens     float64       `json:"tokens"`
	Share      float64       `json:"share"`
	Payout     float64       `json:"payout"`
	Profit     float64       `json:"profit"`
	ROIPercent float64       `json:"roi"`
	Note       string        `json:"note"`
}

// Simulate estimates the payout of investing invested SOL on side.
//
// Tokens are priced at the side's average price pool/supply rather than by
// integrating the bonding curve. A winning position receives its token share
// of its own pool plus the same share of the winning-traders distribution. A
// losing position keeps its share of the loser pool times the retention share.
func Simulate(state *domain.MarketState, side domain.SideID, invested float64) Simulation {
	if side != domain.SideB {
		side = domain.SideA
	}
	res := Settle(state)

	pool := state.Account.Balance(side)
	supply := state.Account.Supply(side)

	sim := Simulation{Side: side, Invested: invested}
	if pool > 0 && supply > 0 {
		sim.Tokens = invested / (pool / supply)
		sim.Share = sim.Tokens / supply
	}

	if side == res.Winner {
		sim.Payout = sim.Share*pool + sim.Share*res.ToWinningTraders
		sim.Note = NoteWinner
	} else {
		sim.Payout = sim.Share * res.LoserPoolTotal * LosingTradersShare
		sim.Note = NoteLoser
	}

	sim.Profit = sim.Payout - invested
	if invested != 0 {
		sim.ROIPercent = sim.Profit / invested * 100
	}
	return sim
}
