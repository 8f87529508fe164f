package scanner

// SplitStrategy divides scanned volume between the two sides.
// The feed does not say which side absorbed a transfer, so every strategy is
// an approximation. Implementations must return a+b == total.
type SplitStrategy interface {
	Split(total, balanceA, balanceB float64) (a, b float64)
}

// TVLProportional splits volume by the current pooled balances:
// ratioA = balanceA / (balanceA + balanceB), with a denominator of 1 when
// both balances are zero.
type TVLProportional struct{}

// Split implements SplitStrategy.
func (TVLProportional) Split(total, balanceA, balanceB float64) (float64, float64) {
	denom := balanceA + balanceB
	if denom == 0 {
		denom = 1
	}
	a := total * (balanceA / denom)
	return a, total - a
}

// FixedRatio assigns a constant share of volume to side A.
type FixedRatio float64

// Split implements SplitStrategy.
func (r FixedRatio) Split(total, _, _ float64) (float64, float64) {
	ratio := float64(r)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	a := total * ratio
	return a, total - a
}
