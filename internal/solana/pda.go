package solana

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"battle-analytics/internal/domain"
)

// DefaultProgramID is the battle program on mainnet.
const DefaultProgramID = "9TUfEHvk5fN5vogtQyrefgNqzKy2Bqb4nWVhSFUg2fYo"

// Seed prefixes of the battle program accounts.
const (
	BattleSeed = "battle"
	VaultSeed  = "battle_vault"
)

const (
	maxSeedLen = 32
	pdaMarker  = "ProgramDerivedAddress"
)

// ErrNoViableBump is returned when every bump seed lands on the curve.
var ErrNoViableBump = errors.New("unable to find a viable program address bump seed")

// FindProgramAddress derives a Program Derived Address and its bump seed.
// The bump is searched from 255 down; the first off-curve hash wins.
func FindProgramAddress(seeds [][]byte, programID string) (string, uint8, error) {
	programBytes, err := base58.Decode(programID)
	if err != nil {
		return "", 0, fmt.Errorf("decode program id: %w", err)
	}
	if len(programBytes) != 32 {
		return "", 0, fmt.Errorf("program id must be 32 bytes, got %d", len(programBytes))
	}
	for _, seed := range seeds {
		if len(seed) > maxSeedLen {
			return "", 0, fmt.Errorf("seed exceeds %d bytes", maxSeedLen)
		}
	}

	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(programBytes)
		h.Write([]byte(pdaMarker))
		sum := h.Sum(nil)

		if !isOnCurve(sum) {
			return base58.Encode(sum), uint8(bump), nil
		}
	}
	return "", 0, ErrNoViableBump
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// DeriveBattleAddresses derives the market account and its vault for battleID.
func DeriveBattleAddresses(programID string, battleID uint64) (domain.Addresses, error) {
	id := make([]byte, 8)
	binary.LittleEndian.PutUint64(id, battleID)

	market, _, err := FindProgramAddress([][]byte{[]byte(BattleSeed), id}, programID)
	if err != nil {
		return domain.Addresses{}, fmt.Errorf("derive battle address: %w", err)
	}
	vault, _, err := FindProgramAddress([][]byte{[]byte(VaultSeed), id}, programID)
	if err != nil {
		return domain.Addresses{}, fmt.Errorf("derive vault address: %w", err)
	}
	return domain.Addresses{Market: market, Vault: vault}, nil
}
