// Package idhash derives deterministic identifiers from market data.
package idhash

import (
	"crypto/sha256"
	"encoding/binary"
)

// ReplaySeed derives the default random seed of a market's stochastic replay.
// Formula: first 8 bytes (big-endian) of SHA256("replay|" + market_id).
// The same market always replays the same way unless a seed is given.
func ReplaySeed(marketID string) uint64 {
	hash := sha256.Sum256([]byte("replay|" + marketID))
	return binary.BigEndian.Uint64(hash[:8])
}
