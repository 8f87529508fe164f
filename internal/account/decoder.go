package account

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"battle-analytics/internal/domain"
)

// ErrMalformedRecord is returned when the buffer does not match the layout.
// It indicates a schema mismatch, not an absent account.
var ErrMalformedRecord = errors.New("malformed battle account")

// DecodeRaw reads the layout fields from data without scaling.
func DecodeRaw(data []byte) (Raw, error) {
	var raw Raw
	if len(data) < MinLength {
		return raw, fmt.Errorf("%w: %d bytes, need %d", ErrMalformedRecord, len(data), MinLength)
	}

	off := 0
	for _, f := range Layout {
		if f.bind != nil {
			chunk := data[off : off+f.Width]
			switch dst := f.bind(&raw).(type) {
			case *uint64:
				*dst = binary.LittleEndian.Uint64(chunk)
			case *int64:
				*dst = int64(binary.LittleEndian.Uint64(chunk))
			case *bool:
				*dst = chunk[0] == 1
			}
		}
		off += f.Width
	}
	return raw, nil
}

// Decode reads a battle account and converts it to its typed form.
// now decides whether an active market has passed its end time.
func Decode(data []byte, now time.Time) (domain.AccountRecord, error) {
	raw, err := DecodeRaw(data)
	if err != nil {
		return domain.AccountRecord{}, err
	}
	return raw.Record(now), nil
}

// Record scales the raw values into an AccountRecord.
func (r Raw) Record(now time.Time) domain.AccountRecord {
	endMs := r.EndTime * 1000
	return domain.AccountRecord{
		OnChainID:         r.BattleID,
		StartTime:         r.StartTime * 1000,
		EndTime:           endMs,
		Ended:             !r.IsActive || now.UnixMilli() > endMs,
		IsActive:          r.IsActive,
		BalanceA:          Scale(r.BalanceA, LamportsDecimals),
		BalanceB:          Scale(r.BalanceB, LamportsDecimals),
		SupplyA:           Scale(r.SupplyA, SupplyDecimals),
		SupplyB:           Scale(r.SupplyB, SupplyDecimals),
		WinnerDecided:     r.WinnerDecided,
		WinnerIsA:         r.WinnerIsA,
		TotalDistribution: Scale(r.TotalDistribution, LamportsDecimals),
	}
}

// Scale converts a fixed-point integer into a decimal unit.
func Scale(raw uint64, decimals int) float64 {
	f, _ := decimal.NewFromBigInt(new(big.Int).SetUint64(raw), int32(-decimals)).Float64()
	return f
}

// Unscale converts a decimal unit back into its fixed-point integer, rounding
// to the nearest unit. Negative values clamp to zero.
func Unscale(v float64, decimals int) uint64 {
	d := decimal.NewFromFloat(v).Shift(int32(decimals)).Round(0)
	if d.IsNegative() {
		return 0
	}
	return d.BigInt().Uint64()
}

// Encode writes raw into a buffer of MinLength bytes following the layout.
// Skipped fields are zero-filled.
func Encode(raw Raw) []byte {
	buf := make([]byte, MinLength)
	off := 0
	for _, f := range Layout {
		if f.bind != nil {
			chunk := buf[off : off+f.Width]
			switch src := f.bind(&raw).(type) {
			case *uint64:
				binary.LittleEndian.PutUint64(chunk, *src)
			case *int64:
				binary.LittleEndian.PutUint64(chunk, uint64(*src))
			case *bool:
				if *src {
					chunk[0] = 1
				}
			}
		}
		off += f.Width
	}
	return buf
}
