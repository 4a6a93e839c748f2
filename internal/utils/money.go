package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseMontant turns spreadsheet money cells into a float amount. It strips
// thousands separators (spaces, non-breaking spaces), currency noise
// ("FCFA", "XOF") and coerces a decimal comma to a point. Unusable input
// yields 0.
func ParseMontant(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")

	// keep digits, dot and sign only
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// FormatCFA renders an amount with space thousands separators, e.g.
// "250 000 FCFA". Fractions are dropped; the agency bills whole francs.
func FormatCFA(amount float64) string {
	n := int64(amount)
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(' ')
		}
		out.WriteRune(c)
	}
	return fmt.Sprintf("%s%s FCFA", sign, out.String())
}
