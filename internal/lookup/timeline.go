// Package lookup answers point-in-time queries over a replay timeline.
package lookup

import (
	"errors"
	"sort"

	"battle-analytics/internal/domain"
)

// ErrNoHistory is returned when the timeline has no points.
var ErrNoHistory = errors.New("no history available")

// Frame is the state of a replay at one instant.
type Frame struct {
	Point domain.HistoryPoint `json:"point"`
	// Events holds every marker at or before the instant, in order.
	Events []domain.ReplayEvent `json:"events"`
}

// PointAt returns the closest history point at or before target.
// If every point is after target, the first point is returned.
// History must be sorted by timestamp ascending.
func PointAt(target int64, history []domain.HistoryPoint) (domain.HistoryPoint, error) {
	if len(history) == 0 {
		return domain.HistoryPoint{}, ErrNoHistory
	}

	// first index strictly after target
	i := sort.Search(len(history), func(i int) bool {
		return history[i].Timestamp > target
	})
	if i == 0 {
		return history[0], nil
	}
	return history[i-1], nil
}

// EventsUntil returns the markers at or before target. Events must be sorted
// by timestamp ascending.
func EventsUntil(target int64, events []domain.ReplayEvent) []domain.ReplayEvent {
	i := sort.Search(len(events), func(i int) bool {
		return events[i].Timestamp > target
	})
	out := make([]domain.ReplayEvent, i)
	copy(out, events[:i])
	return out
}

// FrameAt combines PointAt and EventsUntil.
func FrameAt(target int64, tl domain.Timeline) (Frame, error) {
	p, err := PointAt(target, tl.History)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Point: p, Events: EventsUntil(target, tl.Events)}, nil
}
