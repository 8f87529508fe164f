package idhash

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"
)

func TestReplaySeed_Deterministic(t *testing.T) {
	a := ReplaySeed("market-1")
	b := ReplaySeed("market-1")
	if a != b {
		t.Errorf("same market id produced different seeds: %d vs %d", a, b)
	}
}

func TestReplaySeed_DifferentMarkets(t *testing.T) {
	ids := []string{"market-1", "market-2", "", "Market-1"}
	seen := make(map[uint64]string, len(ids))
	for _, id := range ids {
		seed := ReplaySeed(id)
		if prev, ok := seen[seed]; ok {
			t.Errorf("ids %q and %q collide on seed %d", prev, id, seed)
		}
		seen[seed] = id
	}
}

func TestReplaySeed_Formula(t *testing.T) {
	hash := sha256.Sum256([]byte("replay|abc"))
	want := binary.BigEndian.Uint64(hash[:8])
	if got := ReplaySeed("abc"); got != want {
		t.Errorf("ReplaySeed = %d, want %d", got, want)
	}
}
