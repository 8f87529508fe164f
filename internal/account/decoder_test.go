package account

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_Length(t *testing.T) {
	assert.Equal(t, 257, MinLength)
	assert.Equal(t, 8, Offset("battle_id"))
	assert.Equal(t, 196, Offset("artist_a_supply"))
	assert.Equal(t, 212, Offset("artist_a_sol_balance"))
	assert.Equal(t, 244, Offset("winner_artist_a"))
	assert.Equal(t, 248, Offset("is_active"))
	assert.Equal(t, -1, Offset("no_such_field"))
}

func TestDecode_RoundTrip(t *testing.T) {
	raw := Raw{
		BattleID:          1748000000123,
		StartTime:         1_700_000_000,
		EndTime:           1_700_003_600,
		SupplyA:           1_000_000_000,   // 1000 tokens
		SupplyB:           2_500_500_000,   // 2500.5 tokens
		BalanceA:          120_000_000_000, // 120 SOL
		BalanceB:          80_500_000_001,  // 80.500000001 SOL
		WinnerIsA:         true,
		WinnerDecided:     true,
		IsActive:          true,
		TotalDistribution: 5_000_000_000,
	}

	data := Encode(raw)
	require.Len(t, data, MinLength)

	got, err := DecodeRaw(data)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	now := time.Unix(1_700_000_100, 0)
	rec, err := Decode(data, now)
	require.NoError(t, err)

	assert.Equal(t, uint64(1748000000123), rec.OnChainID)
	assert.Equal(t, int64(1_700_000_000_000), rec.StartTime)
	assert.Equal(t, int64(1_700_003_600_000), rec.EndTime)
	assert.False(t, rec.Ended)
	assert.Equal(t, 120.0, rec.BalanceA)
	assert.Equal(t, 80.500000001, rec.BalanceB)
	assert.Equal(t, 1000.0, rec.SupplyA)
	assert.Equal(t, 2500.5, rec.SupplyB)
	assert.True(t, rec.WinnerDecided)
	assert.True(t, rec.WinnerIsA)
	assert.Equal(t, 5.0, rec.TotalDistribution)

	// Unscale is the inverse of Scale for the fixed-point fields.
	assert.Equal(t, raw.BalanceB, Unscale(rec.BalanceB, LamportsDecimals))
	assert.Equal(t, raw.SupplyB, Unscale(rec.SupplyB, SupplyDecimals))
}

func TestDecode_SkippedFieldsIgnored(t *testing.T) {
	data := Encode(Raw{BalanceA: 1_000_000_000, IsActive: true, EndTime: 10})
	// Garbage in skipped regions must not leak into decoded values.
	for i := 0; i < 8; i++ {
		data[i] = 0xFF
	}
	for i := Offset("wallets_and_mints"); i < Offset("artist_a_supply"); i++ {
		data[i] = 0xAB
	}
	data[Offset("transaction_state")] = 7

	raw, err := DecodeRaw(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), raw.BalanceA)
	assert.Equal(t, uint64(0), raw.SupplyA)
	assert.True(t, raw.IsActive)
}

func TestDecode_EndedFlag(t *testing.T) {
	end := int64(1_700_000_000)

	tests := []struct {
		name   string
		active bool
		now    time.Time
		ended  bool
	}{
		{"active before end", true, time.Unix(end-1, 0), false},
		{"active after end", true, time.Unix(end+1, 0), true},
		{"inactive before end", false, time.Unix(end-1, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Decode(Encode(Raw{EndTime: end, IsActive: tt.active}), tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.ended, rec.Ended)
		})
	}
}

func TestDecode_ShortBuffer(t *testing.T) {
	data := make([]byte, MinLength-1)

	_, err := Decode(data, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRecord))

	_, err = Decode(nil, time.Now())
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestDecode_LongerBufferAccepted(t *testing.T) {
	data := append(Encode(Raw{BalanceB: 3_000_000_000}), make([]byte, 64)...)
	rec, err := Decode(data, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3.0, rec.BalanceB)
}

func TestDecode_NonNegative(t *testing.T) {
	data := Encode(Raw{
		SupplyA:  ^uint64(0),
		SupplyB:  ^uint64(0),
		BalanceA: ^uint64(0),
		BalanceB: ^uint64(0),
	})
	rec, err := Decode(data, time.Now())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rec.BalanceA, 0.0)
	assert.GreaterOrEqual(t, rec.BalanceB, 0.0)
	assert.GreaterOrEqual(t, rec.SupplyA, 0.0)
	assert.GreaterOrEqual(t, rec.SupplyB, 0.0)
}

func TestUnscale_Negative(t *testing.T) {
	assert.Equal(t, uint64(0), Unscale(-1.5, LamportsDecimals))
}
