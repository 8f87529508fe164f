package library

import (
	"sort"

	"battle-analytics/internal/domain"
)

// GroupEvents groups market rounds into events. Rounds sharing a community
// round id form one event; the rest group by unordered artist pair and UTC
// calendar day. Rounds are ordered oldest first, events newest first.
func GroupEvents(summaries []domain.MarketSummary) []domain.BattleEvent {
	byKey := make(map[string][]domain.MarketSummary)
	for _, s := range summaries {
		k := eventKey(s)
		byKey[k] = append(byKey[k], s)
	}

	events := make([]domain.BattleEvent, 0, len(byKey))
	for _, rounds := range byKey {
		sort.SliceStable(rounds, func(i, j int) bool {
			if !rounds[i].CreatedAt.Equal(rounds[j].CreatedAt) {
				return rounds[i].CreatedAt.Before(rounds[j].CreatedAt)
			}
			return rounds[i].ID < rounds[j].ID
		})

		first := rounds[0]
		ev := domain.BattleEvent{
			ID:      first.ID,
			ArtistA: first.ArtistA,
			ArtistB: first.ArtistB,
			Date:    first.CreatedAt,
			Rounds:  rounds,
		}
		for _, r := range rounds {
			if ev.ImageURL == "" {
				ev.ImageURL = r.ImageURL
			}
			if r.IsCommunityBattle {
				ev.IsCommunityEvent = true
			}
		}
		events = append(events, ev)
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.After(events[j].Date)
		}
		return events[i].ID < events[j].ID
	})
	return events
}

func eventKey(s domain.MarketSummary) string {
	if s.CommunityRoundID != "" {
		return "round:" + s.CommunityRoundID
	}
	a, b := s.ArtistA.Key(), s.ArtistB.Key()
	if b < a {
		a, b = b, a
	}
	return "pair:" + a + "|" + b + "|" + s.CreatedAt.UTC().Format("2006-01-02")
}
