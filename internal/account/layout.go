// Package account decodes the on-chain battle account.
//
// The byte layout is owned by the on-chain program. It is a flat,
// little-endian, fixed-offset struct; reordering or resizing any field is a
// schema change and must be mirrored here as a new layout, never patched in
// place.
package account

// Fixed-point conventions of the program.
const (
	SupplyDecimals   = 6 // token supplies
	LamportsDecimals = 9 // SOL balances
)

// Kind is the semantic type of a layout field.
type Kind int

// Field kinds.
const (
	KindSkip Kind = iota
	KindU64
	KindI64
	KindBool
)

// Field is one entry of the account layout.
type Field struct {
	Name     string
	Width    int
	Decimals int // 0 for unscaled fields
	Kind     Kind

	// bind returns the Raw member the field decodes into. Nil for skipped fields.
	bind func(r *Raw) any
}

// Raw holds the unscaled values of the decoded fields.
type Raw struct {
	BattleID          uint64
	StartTime         int64 // seconds
	EndTime           int64 // seconds
	SupplyA           uint64
	SupplyB           uint64
	BalanceA          uint64 // lamports
	BalanceB          uint64 // lamports
	WinnerIsA         bool
	WinnerDecided     bool
	IsActive          bool
	TotalDistribution uint64 // lamports
}

// Layout is the battle account schema in byte order.
var Layout = []Field{
	{Name: "discriminator", Width: 8, Kind: KindSkip},
	{Name: "battle_id", Width: 8, Kind: KindU64, bind: func(r *Raw) any { return &r.BattleID }},
	{Name: "bumps", Width: 4, Kind: KindSkip},
	{Name: "start_time", Width: 8, Kind: KindI64, bind: func(r *Raw) any { return &r.StartTime }},
	{Name: "end_time", Width: 8, Kind: KindI64, bind: func(r *Raw) any { return &r.EndTime }},
	// artist wallets, mints and treasury are re-derived elsewhere
	{Name: "wallets_and_mints", Width: 32 * 5, Kind: KindSkip},
	{Name: "artist_a_supply", Width: 8, Decimals: SupplyDecimals, Kind: KindU64, bind: func(r *Raw) any { return &r.SupplyA }},
	{Name: "artist_b_supply", Width: 8, Decimals: SupplyDecimals, Kind: KindU64, bind: func(r *Raw) any { return &r.SupplyB }},
	{Name: "artist_a_sol_balance", Width: 8, Decimals: LamportsDecimals, Kind: KindU64, bind: func(r *Raw) any { return &r.BalanceA }},
	{Name: "artist_b_sol_balance", Width: 8, Decimals: LamportsDecimals, Kind: KindU64, bind: func(r *Raw) any { return &r.BalanceB }},
	{Name: "internal_pools", Width: 16, Kind: KindSkip},
	{Name: "winner_artist_a", Width: 1, Kind: KindBool, bind: func(r *Raw) any { return &r.WinnerIsA }},
	{Name: "winner_decided", Width: 1, Kind: KindBool, bind: func(r *Raw) any { return &r.WinnerDecided }},
	{Name: "transaction_state", Width: 1, Kind: KindSkip},
	{Name: "is_initialized", Width: 1, Kind: KindSkip},
	{Name: "is_active", Width: 1, Kind: KindBool, bind: func(r *Raw) any { return &r.IsActive }},
	{Name: "total_distribution", Width: 8, Decimals: LamportsDecimals, Kind: KindU64, bind: func(r *Raw) any { return &r.TotalDistribution }},
}

// MinLength is the number of bytes the layout requires.
var MinLength = layoutLength()

func layoutLength() int {
	n := 0
	for _, f := range Layout {
		n += f.Width
	}
	return n
}

// Offset returns the byte offset of a named field, or -1 if absent.
func Offset(name string) int {
	off := 0
	for _, f := range Layout {
		if f.Name == name {
			return off
		}
		off += f.Width
	}
	return -1
}
