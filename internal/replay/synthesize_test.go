package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"battle-analytics/internal/domain"
)

var now = time.UnixMilli(1_700_000_000_000)

func marketState(balA, balB float64, ended bool) *domain.MarketState {
	return &domain.MarketState{
		Summary: domain.MarketSummary{
			ArtistA: domain.Side{Name: "Alpha"},
			ArtistB: domain.Side{Name: "Beta"},
		},
		Account: domain.AccountRecord{
			StartTime: 1_700_000_000_000,
			EndTime:   1_700_003_600_000,
			Ended:     ended,
			BalanceA:  balA,
			BalanceB:  balB,
		},
		Attribution: domain.TransferAttribution{VolumeA: 300, VolumeB: 200, TotalVolume: 500},
	}
}

func TestInterpolate_ConvergesToFinalValues(t *testing.T) {
	s := marketState(120, 80, true)

	tl := Synthesize(s, Options{Points: 10, Now: now})

	require.Len(t, tl.History, 11)
	first, last := tl.History[0], tl.History[10]

	assert.Equal(t, s.Account.StartTime, first.Timestamp)
	assert.Equal(t, s.Account.EndTime, last.Timestamp)
	assert.Equal(t, 0.0, first.TVLA)
	assert.InDelta(t, 120.0, last.TVLA, 1e-9)
	assert.InDelta(t, 80.0, last.TVLB, 1e-9)
	assert.InDelta(t, 300.0, last.VolumeA, 1e-9)
	assert.InDelta(t, 200.0, last.VolumeB, 1e-9)

	// cubic ease-out at the midpoint
	assert.InDelta(t, 120*(1-0.125), tl.History[5].TVLA, 1e-9)

	for i := 1; i < len(tl.History); i++ {
		assert.Equal(t, int64(360_000), tl.History[i].Timestamp-tl.History[i-1].Timestamp)
		assert.GreaterOrEqual(t, tl.History[i].TVLA, tl.History[i-1].TVLA)
	}
}

func TestSynthesize_StartAndEndEvents(t *testing.T) {
	tl := Synthesize(marketState(120, 80, true), Options{Points: 4, Now: now})

	require.Len(t, tl.Events, 2)
	assert.Equal(t, domain.EventStart, tl.Events[0].Type)
	assert.Equal(t, int64(1_700_000_000_000), tl.Events[0].Timestamp)
	assert.Equal(t, domain.EventEnd, tl.Events[1].Type)
	assert.Equal(t, int64(1_700_003_600_000), tl.Events[1].Timestamp)

	tl = Synthesize(marketState(120, 80, false), Options{Points: 4, Now: now})
	require.Len(t, tl.Events, 1)
	assert.Equal(t, domain.EventStart, tl.Events[0].Type)
}

func TestSynthesize_MissingWindowDefaults(t *testing.T) {
	s := marketState(1, 2, false)
	s.Account.StartTime = 0
	s.Account.EndTime = 0

	tl := Synthesize(s, Options{Points: 2, Now: now})

	assert.Equal(t, now.Add(-time.Hour).UnixMilli(), tl.History[0].Timestamp)
	assert.Equal(t, now.UnixMilli(), tl.History[2].Timestamp)
}

func TestSynthesize_DefaultPoints(t *testing.T) {
	tl := Synthesize(marketState(1, 2, false), Options{Now: now})
	assert.Len(t, tl.History, DefaultPoints+1)
}

func TestLeadChanges(t *testing.T) {
	summary := domain.MarketSummary{
		ArtistA: domain.Side{Name: "Alpha"},
		ArtistB: domain.Side{Name: "Beta"},
	}
	history := []domain.HistoryPoint{
		{Timestamp: 1, TVLA: 0, TVLB: 0}, // tie, no leader yet
		{Timestamp: 2, TVLA: 2, TVLB: 1}, // A leads, no event
		{Timestamp: 3, TVLA: 2, TVLB: 2}, // tie keeps A
		{Timestamp: 4, TVLA: 2, TVLB: 3}, // B takes lead
		{Timestamp: 5, TVLA: 1, TVLB: 3},
		{Timestamp: 6, TVLA: 5, TVLB: 3}, // A takes lead
	}

	events := leadChanges(summary, history)

	require.Len(t, events, 2)
	assert.Equal(t, int64(4), events[0].Timestamp)
	assert.Equal(t, domain.SideB, events[0].Side)
	assert.Equal(t, "Beta takes the lead", events[0].Description)
	assert.Equal(t, int64(6), events[1].Timestamp)
	assert.Equal(t, domain.SideA, events[1].Side)
	assert.Equal(t, domain.EventLeadChange, events[1].Type)
}

func TestStochastic_Deterministic(t *testing.T) {
	s := marketState(50, 40, true)
	opts := Options{Mode: ModeStochastic, Seed: 42, Points: 50, Now: now}

	a := Synthesize(s, opts)
	b := Synthesize(s, opts)
	assert.Equal(t, a, b)

	c := Synthesize(s, Options{Mode: ModeStochastic, Seed: 43, Points: 50, Now: now})
	assert.NotEqual(t, a.History, c.History)
}

func TestStochastic_Invariants(t *testing.T) {
	s := marketState(500, 300, true)
	tl := Synthesize(s, Options{Mode: ModeStochastic, Seed: 7, Points: 200, Floor: 2, Now: now})

	require.Len(t, tl.History, 201)
	assert.Equal(t, 2.0, tl.History[0].TVLA)
	assert.Equal(t, 2.0, tl.History[0].TVLB)

	for i := 1; i < len(tl.History); i++ {
		prev, cur := tl.History[i-1], tl.History[i]
		assert.GreaterOrEqual(t, cur.TVLA, 2.0)
		assert.GreaterOrEqual(t, cur.TVLB, 2.0)
		assert.GreaterOrEqual(t, cur.VolumeA, prev.VolumeA)
		assert.GreaterOrEqual(t, cur.VolumeB, prev.VolumeB)
	}

	assert.Equal(t, domain.EventStart, tl.Events[0].Type)
	assert.Equal(t, domain.EventEnd, tl.Events[len(tl.Events)-1].Type)
	for i := 1; i < len(tl.Events); i++ {
		assert.GreaterOrEqual(t, tl.Events[i].Timestamp, tl.Events[i-1].Timestamp)
	}
}

func TestStochastic_WhaleMarkers(t *testing.T) {
	s := marketState(5000, 10, false)
	tl := Synthesize(s, Options{Mode: ModeStochastic, Seed: 1, Points: 20, WhaleThreshold: 1, Now: now})

	var whales int
	for _, e := range tl.Events {
		if e.Type == domain.EventWhaleBuy {
			whales++
			assert.NotEmpty(t, e.Side)
		}
	}
	assert.Greater(t, whales, 0)

	tl = Synthesize(s, Options{Points: 20, WhaleThreshold: 1, Now: now})
	for _, e := range tl.Events {
		assert.NotEqual(t, domain.EventWhaleBuy, e.Type)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("stochastic")
	require.NoError(t, err)
	assert.Equal(t, ModeStochastic, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeInterpolate, m)

	_, err = ParseMode("random")
	assert.Error(t, err)
}
