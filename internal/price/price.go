// Package price normalizes storefront-submitted amounts and quantities.
package price

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalid reports a price that is missing, unparsable, or not positive.
var ErrInvalid = errors.New("invalid custom price")

// Parse sanitizes a submitted amount and formats it with exactly two fraction
// digits. Currency symbols and spaces are stripped; both "1,234.50" and
// "1.234,50" style separators are accepted. Non-positive amounts fail.
func Parse(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := normalizeSeparators(b.String())
	if cleaned == "" {
		return "", ErrInvalid
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return "", ErrInvalid
	}
	if !d.IsPositive() {
		return "", ErrInvalid
	}
	return d.StringFixed(2), nil
}

// normalizeSeparators rewrites grouping and decimal separators into plain
// decimal-point form. When both separators appear, the last-seen one is the
// decimal point. A lone comma is the decimal point unless it is followed by
// exactly three digits, in which case it is grouping.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastDot > lastComma {
			return strings.ReplaceAll(s, ",", "")
		}
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	default:
		return s
	}
}

// Quantity parses a count, taking the leading integer part of the input and
// falling back to def when the result is missing, non-numeric, or not
// positive.
func Quantity(raw string, def int) int {
	s := strings.TrimSpace(raw)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	n := 0
	seen := false
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if n > 1<<30 {
			return def
		}
		n = n*10 + int(s[i]-'0')
		seen = true
	}
	if !seen || neg || n <= 0 {
		return def
	}
	return n
}
