package domain

// HistoryPoint is one sample of a replay timeline.
type HistoryPoint struct {
	Timestamp int64   `json:"timestamp"` // ms
	TVLA      float64 `json:"tvlA"`
	TVLB      float64 `json:"tvlB"`
	VolumeA   float64 `json:"volumeA"`
	VolumeB   float64 `json:"volumeB"`
}

// ReplayEventType classifies a replay marker.
type ReplayEventType string

// Replay markers.
const (
	EventStart      ReplayEventType = "START"
	EventEnd        ReplayEventType = "END"
	EventLeadChange ReplayEventType = "LEAD_CHANGE"
	EventWhaleBuy   ReplayEventType = "WHALE_BUY"
)

// ReplayEvent is one marker of a replay timeline.
type ReplayEvent struct {
	Timestamp   int64           `json:"timestamp"`
	Type        ReplayEventType `json:"type"`
	Description string          `json:"description"`
	Side        SideID          `json:"artistId,omitempty"`
}

// Timeline is a synthesized replay.
type Timeline struct {
	History []HistoryPoint `json:"history"`
	Events  []ReplayEvent  `json:"events"`
}
