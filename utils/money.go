package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount formats an amount with two decimals and thousands separators, e.g. "$1,234.50".
// Currency codes other than USD are appended ("1,234.50 EUR").
func FormatAmount(amount decimal.Decimal, currency string) string {
	neg := amount.IsNegative()
	s := amount.Abs().StringFixed(2)

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	b.Grow(len(s) + len(intPart)/3 + 6)
	if neg {
		b.WriteByte('-')
	}
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" || code == "USD" {
		b.WriteByte('$')
	}

	// Insert separators from the left.
	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)

	if code != "" && code != "USD" {
		b.WriteByte(' ')
		b.WriteString(code)
	}
	return b.String()
}
