package utils

import (
	"strings"
	"unicode"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitFullName splits a free-text full name into (nom, prenom). First token
// is the family name, the rest the given name(s). An all-uppercase name of
// more than two words is treated as an organization: the whole string
// becomes nom and prenom is "-".
func SplitFullName(full string) (string, string) {
	full = NormalizeSpace(full)
	if full == "" {
		return "", ""
	}

	parts := strings.Split(full, " ")
	if len(parts) > 2 && isAllUpper(full) {
		return full, "-"
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// SplitRoute derives (depart, arrivee) from a hyphen-delimited route string,
// taking the first and last segments: "DSS - CDG - JFK" -> DSS, JFK.
func SplitRoute(route string) (string, string) {
	parts := strings.Split(route, "-")
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			clean = append(clean, p)
		}
	}
	switch len(clean) {
	case 0:
		return "", ""
	case 1:
		return clean[0], ""
	default:
		return clean[0], clean[len(clean)-1]
	}
}
