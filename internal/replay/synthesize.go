// Package replay synthesizes a replay timeline for a market from its final
// state. The chain keeps no history of pool balances, so the series is
// generated, not reconstructed.
package replay

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"battle-analytics/internal/domain"
)

// Mode selects how the series is generated.
type Mode int

const (
	// ModeInterpolate eases every series from zero to its final value.
	ModeInterpolate Mode = iota
	// ModeStochastic runs a seeded biased random walk from a floor.
	ModeStochastic
)

// ParseMode maps "interpolate" and "stochastic" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "interpolate":
		return ModeInterpolate, nil
	case "stochastic":
		return ModeStochastic, nil
	default:
		return 0, fmt.Errorf("unknown replay mode %q", s)
	}
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == ModeStochastic {
		return "stochastic"
	}
	return "interpolate"
}

// Defaults.
const (
	DefaultPoints         = 100
	DefaultFloor          = 1.0
	DefaultUpProbability  = 0.7
	DefaultWhaleThreshold = 5.0
	defaultWindow         = time.Hour

	// down moves are at most this fraction of an up move
	downRatio = 0.25
)

// Options controls Synthesize.
type Options struct {
	Points int
	Mode   Mode

	// Stochastic mode only.
	Seed           uint64
	Floor          float64
	UpProbability  float64
	WhaleThreshold float64

	// Now replaces the wall clock for missing start/end times.
	Now time.Time
}

// DefaultOptions returns interpolation with 100 steps.
func DefaultOptions() Options {
	return Options{
		Points:         DefaultPoints,
		Mode:           ModeInterpolate,
		Floor:          DefaultFloor,
		UpProbability:  DefaultUpProbability,
		WhaleThreshold: DefaultWhaleThreshold,
	}
}

func (o *Options) normalize() {
	def := DefaultOptions()
	if o.Points <= 0 {
		o.Points = def.Points
	}
	if o.Floor <= 0 {
		o.Floor = def.Floor
	}
	if o.UpProbability <= 0 || o.UpProbability > 1 {
		o.UpProbability = def.UpProbability
	}
	if o.WhaleThreshold <= 0 {
		o.WhaleThreshold = def.WhaleThreshold
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
}

// Synthesize builds Points+1 history samples between the market's start and
// end, plus its events. A missing start defaults to one hour before now and a
// missing end to now.
func Synthesize(state *domain.MarketState, opts Options) domain.Timeline {
	opts.normalize()

	start, end := window(state.Account, opts.Now)

	var tl domain.Timeline
	switch opts.Mode {
	case ModeStochastic:
		tl = walk(state, start, end, opts)
	default:
		tl = interpolate(state, start, end, opts.Points)
	}

	events := []domain.ReplayEvent{{Timestamp: start, Type: domain.EventStart, Description: "Battle Begins"}}
	events = append(events, leadChanges(state.Summary, tl.History)...)
	events = mergeByTime(events, tl.Events)
	if state.Account.Ended {
		events = append(events, domain.ReplayEvent{Timestamp: end, Type: domain.EventEnd, Description: "Battle Ends"})
	}
	tl.Events = events
	return tl
}

func window(acc domain.AccountRecord, now time.Time) (int64, int64) {
	start := acc.StartTime
	if start == 0 {
		start = now.Add(-defaultWindow).UnixMilli()
	}
	end := acc.EndTime
	if end == 0 {
		end = now.UnixMilli()
	}
	if end < start {
		end = start
	}
	return start, end
}

// timestampAt returns the i-th of points+1 evenly spaced instants. The last
// one is exactly end.
func timestampAt(start, end int64, i, points int) int64 {
	return start + (end-start)*int64(i)/int64(points)
}

func interpolate(state *domain.MarketState, start, end int64, points int) domain.Timeline {
	acc, attr := state.Account, state.Attribution
	history := make([]domain.HistoryPoint, 0, points+1)

	for i := 0; i <= points; i++ {
		progress := float64(i) / float64(points)
		ease := 1 - math.Pow(1-progress, 3)
		history = append(history, domain.HistoryPoint{
			Timestamp: timestampAt(start, end, i, points),
			TVLA:      acc.BalanceA * ease,
			TVLB:      acc.BalanceB * ease,
			VolumeA:   attr.VolumeA * ease,
			VolumeB:   attr.VolumeB * ease,
		})
	}
	return domain.Timeline{History: history}
}

// walk generates a plausible path: each step moves a side up with
// probability UpProbability, otherwise down by a smaller amount, never below
// the floor. Every move adds to that side's volume. Up moves above
// WhaleThreshold are marked as whale buys.
func walk(state *domain.MarketState, start, end int64, opts Options) domain.Timeline {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	type side struct {
		id       domain.SideID
		name     string
		tvl, vol float64
		maxStep  float64
	}
	// Expected drift per step lands the walk near the final balance.
	drift := math.Max(opts.UpProbability-downRatio*(1-opts.UpProbability), 0.05)
	stepFor := func(target float64) float64 {
		gain := math.Max(target-opts.Floor, 0)
		return 2*gain/(float64(opts.Points)*drift) + opts.Floor*0.05
	}
	sides := []*side{
		{id: domain.SideA, name: state.Summary.ArtistA.Name, tvl: opts.Floor, maxStep: stepFor(state.Account.BalanceA)},
		{id: domain.SideB, name: state.Summary.ArtistB.Name, tvl: opts.Floor, maxStep: stepFor(state.Account.BalanceB)},
	}

	history := make([]domain.HistoryPoint, 0, opts.Points+1)
	var events []domain.ReplayEvent

	for i := 0; i <= opts.Points; i++ {
		ts := timestampAt(start, end, i, opts.Points)
		if i > 0 {
			for _, s := range sides {
				if rng.Float64() < opts.UpProbability {
					delta := rng.Float64() * s.maxStep
					s.tvl += delta
					s.vol += delta
					if delta > opts.WhaleThreshold {
						events = append(events, domain.ReplayEvent{
							Timestamp:   ts,
							Type:        domain.EventWhaleBuy,
							Description: fmt.Sprintf("Whale buy on %s: %.2f SOL", displayName(s.name, s.id), delta),
							Side:        s.id,
						})
					}
					continue
				}
				delta := rng.Float64() * s.maxStep * downRatio
				if s.tvl-delta < opts.Floor {
					delta = s.tvl - opts.Floor
					s.tvl = opts.Floor
				} else {
					s.tvl -= delta
				}
				s.vol += delta
			}
		}
		history = append(history, domain.HistoryPoint{
			Timestamp: ts,
			TVLA:      sides[0].tvl,
			TVLB:      sides[1].tvl,
			VolumeA:   sides[0].vol,
			VolumeB:   sides[1].vol,
		})
	}
	return domain.Timeline{History: history, Events: events}
}

// leadChanges emits an event whenever the TVL leader differs from the last
// non-tied leader. Ties never start or end a lead.
func leadChanges(summary domain.MarketSummary, history []domain.HistoryPoint) []domain.ReplayEvent {
	var (
		events []domain.ReplayEvent
		leader domain.SideID
	)
	for _, p := range history {
		var cur domain.SideID
		switch {
		case p.TVLA > p.TVLB:
			cur = domain.SideA
		case p.TVLB > p.TVLA:
			cur = domain.SideB
		default:
			continue
		}
		if leader != "" && cur != leader {
			events = append(events, domain.ReplayEvent{
				Timestamp:   p.Timestamp,
				Type:        domain.EventLeadChange,
				Description: fmt.Sprintf("%s takes the lead", displayName(summary.SideByID(cur).Name, cur)),
				Side:        cur,
			})
		}
		leader = cur
	}
	return events
}

func displayName(name string, id domain.SideID) string {
	if name == "" {
		return "Artist " + string(id)
	}
	return name
}

// mergeByTime merges two timestamp-ordered event lists; on equal timestamps
// events from a come first.
func mergeByTime(a, b []domain.ReplayEvent) []domain.ReplayEvent {
	out := make([]domain.ReplayEvent, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if b[j].Timestamp < a[i].Timestamp {
			out = append(out, b[j])
			j++
			continue
		}
		out = append(out, a[i])
		i++
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
