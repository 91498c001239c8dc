// Package money parses and converts pt-BR formatted monetary amounts.
//
// Brazilian slips print amounts with a comma decimal separator and an
// optional period thousands separator ("1.234,56"). Sums are carried in
// integer cents so that adding many small values never drifts.
package money

import (
	"math"
	"strconv"
	"strings"
)

// ParseBRL parses a pt-BR formatted amount string ("1.234,56", "R$ -5,10")
// into a decimal value rounded to 2 places. The second return is false when
// no amount could be parsed.
func ParseBRL(raw string) (float64, bool) {
	s := keepAmountRunes(strings.TrimSpace(raw))
	s = stripThousands(s)
	s = strings.Replace(s, ",", ".", 1)
	if !strings.ContainsAny(s, "0123456789") {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return Round2(n), true
}

// ParseBRLValue parses an amount that may arrive as a JSON number or a
// pt-BR formatted string. Numeric input bypasses string parsing but is
// still rounded to 2 places.
func ParseBRLValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return 0, false
		}
		return Round2(t), true
	case int:
		return Round2(float64(t)), true
	case int64:
		return Round2(float64(t)), true
	case string:
		return ParseBRL(t)
	default:
		return 0, false
	}
}

// ParseCount parses a transaction count that may arrive as a JSON number or
// a numeric string. Fractional values are truncated.
func ParseCount(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return 0, false
		}
		return int64(math.Trunc(t)), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		return int64(math.Trunc(n)), true
	default:
		return 0, false
	}
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(n float64) float64 {
	return math.Round(n*100) / 100
}

// ToCents converts a decimal amount to integer cents.
func ToCents(n float64) int64 {
	return int64(math.Round(n * 100))
}

// FromCents converts integer cents back to a decimal amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// keepAmountRunes drops everything except digits, comma, period and minus.
func keepAmountRunes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripThousands removes each period that is followed by exactly three
// digits and then a non-digit or the end of the string, so
// "1.234.567,89" becomes "1234567,89" while "1.2345" is left alone.
func stripThousands(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			run := 0
			for j := i + 1; j < len(s) && s[j] >= '0' && s[j] <= '9'; j++ {
				run++
			}
			if run == 3 {
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
