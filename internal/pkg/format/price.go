package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
)

// privacyMask replaces every numeric display value while privacy mode is
// on.
const privacyMask = "••••••"

// subscripts maps a leading-zero count to its compact subscript marker.
// Prices at or above 0.001 are formatted plainly, so counts start at 3;
// counts outside this range fall back to plain formatting.
var subscripts = map[int]string{
	3: "₃", 4: "₄", 5: "₅", 6: "₆",
	7: "₇", 8: "₈", 9: "₉", 10: "₁₀", 11: "₁₁", 12: "₁₂",
}

// FormatCryptoPrice renders a non-negative unit price as a display
// string. Sub-cent prices use the subscript zero-count notation
// ("$0.0₅1234"); the output is cosmetic and intentionally lossy.
func FormatCryptoPrice(price float64) string {
	if price == 0 {
		return "$0.00"
	}
	if price >= 1 {
		return FormatCurrency(price)
	}
	if price >= 0.001 {
		return "$" + strconv.FormatFloat(price, 'f', 4, 64)
	}

	frac := fractionDigits(price)
	zeroCount := 0
	for zeroCount < len(frac) && frac[zeroCount] == '0' {
		zeroCount++
	}

	if marker, ok := subscripts[zeroCount]; ok {
		significant := frac[zeroCount:]
		if len(significant) > 4 {
			significant = significant[:4]
		}
		return "$0.0" + marker + significant
	}

	// Zero count beyond the supported subscript range: plain formatting
	// with up to 8 fractional digits.
	out := strings.TrimRight(strconv.FormatFloat(price, 'f', 8, 64), "0")
	out = strings.TrimRight(out, ".")
	if out == "0" {
		out = "0.00"
	}
	return "$" + out
}

// fractionDigits returns the decimal expansion after the point, using
// the shortest round-trip form so binary noise never leaks into the
// significant digits, e.g. 0.00012345 -> "00012345".
func fractionDigits(price float64) string {
	s := strconv.FormatFloat(price, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return ""
	}
	return s[dot+1:]
}

// FormatCurrency renders a quote-currency amount with grouping and two
// fractional digits ("$1,234.50").
func FormatCurrency(v float64) string {
	return money.New(int64(math.Round(v*100)), money.USD).Display()
}

// FormatQuantity renders a token amount with thousands grouping and up
// to four fractional digits, trailing zeros dropped.
func FormatQuantity(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	whole, frac, _ := strings.Cut(s, ".")

	neg := strings.HasPrefix(whole, "-")
	digits := strings.TrimPrefix(whole, "-")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	frac = strings.TrimRight(frac, "0")
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatPercent renders the magnitude of a percent value; the sign is
// conveyed by color, not text.
func FormatPercent(v float64) string {
	if v == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", math.Abs(v))
}

// MaskIfPrivate substitutes the fixed privacy placeholder when privacy
// mode is active.
func MaskIfPrivate(private bool, s string) string {
	if private {
		return privacyMask
	}
	return s
}

// PnLTone classifies a P&L value for rendering: "up", "down" or "flat".
func PnLTone(v float64) string {
	switch {
	case v > 0:
		return "up"
	case v < 0:
		return "down"
	default:
		return "flat"
	}
}
