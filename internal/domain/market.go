package domain

import (
	"strings"
	"time"
)

// SideID tags one of the two competing sides of a market.
type SideID string

// Side tags.
const (
	SideA       SideID = "A"
	SideB       SideID = "B"
	SideUnknown SideID = "Unknown"
)

// Opposite returns the other side. Unknown maps to itself.
func (s SideID) Opposite() SideID {
	switch s {
	case SideA:
		return SideB
	case SideB:
		return SideA
	default:
		return SideUnknown
	}
}

// Side describes one competing entity (an artist) of a market.
type Side struct {
	ID        string `json:"id" yaml:"id" toml:"id"`
	Name      string `json:"name" yaml:"name" toml:"name"`
	Color     string `json:"color" yaml:"color" toml:"color"`
	Avatar    string `json:"avatar" yaml:"avatar" toml:"avatar"`
	Wallet    string `json:"wallet" yaml:"wallet" toml:"wallet"`
	Mint      string `json:"mint,omitempty" yaml:"mint" toml:"mint"`
	Twitter   string `json:"twitter,omitempty" yaml:"twitter" toml:"twitter"`
	MusicLink string `json:"musicLink,omitempty" yaml:"music_link" toml:"music_link"`
}

// Key returns the aggregation identity of the side.
func (s Side) Key() string {
	return NormalizeName(s.Name)
}

// NormalizeName folds a display name into an aggregation key:
// surrounding whitespace trimmed, inner whitespace collapsed, lower-cased.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// MarketSummary is the externally supplied, immutable description of a market.
type MarketSummary struct {
	ID                string    `json:"id" yaml:"id" toml:"id"`                      // UUID
	BattleID          uint64    `json:"battleId" yaml:"battle_id" toml:"battle_id"` // on-chain numeric id
	CreatedAt         time.Time `json:"createdAt" yaml:"created_at" toml:"created_at"`
	Status            string    `json:"status" yaml:"status" toml:"status"`
	ArtistA           Side      `json:"artistA" yaml:"artist_a" toml:"artist_a"`
	ArtistB           Side      `json:"artistB" yaml:"artist_b" toml:"artist_b"`
	Duration          int64     `json:"battleDuration" yaml:"battle_duration" toml:"battle_duration"` // seconds
	WinnerDecided     bool      `json:"winnerDecided" yaml:"winner_decided" toml:"winner_decided"`
	ImageURL          string    `json:"imageUrl" yaml:"image_url" toml:"image_url"`
	StreamLink        string    `json:"streamLink,omitempty" yaml:"stream_link" toml:"stream_link"`
	CreatorWallet     string    `json:"creatorWallet,omitempty" yaml:"creator_wallet" toml:"creator_wallet"`
	IsCommunityBattle bool      `json:"isCommunityBattle" yaml:"is_community_battle" toml:"is_community_battle"`
	CommunityRoundID  string    `json:"communityRoundId,omitempty" yaml:"community_round_id" toml:"community_round_id"`
}

// SideByID returns the side descriptor for a tag.
func (m *MarketSummary) SideByID(id SideID) Side {
	if id == SideB {
		return m.ArtistB
	}
	return m.ArtistA
}
