package reporting

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatSOL renders a SOL amount with two decimals, thousands separators and
// the "◎" prefix.
func FormatSOL(v float64) string {
	return "◎" + groupThousands(decimal.NewFromFloat(v).StringFixed(2))
}

// FormatUSD renders a fiat amount like FormatSOL with a "$" prefix.
func FormatUSD(v float64) string {
	return "$" + groupThousands(decimal.NewFromFloat(v).StringFixed(2))
}

// FormatPct renders a percentage with two decimals.
func FormatPct(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	if frac != "" {
		sb.WriteByte('.')
		sb.WriteString(frac)
	}
	return sign + sb.String()
}
