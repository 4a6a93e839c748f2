package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
)

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// FormatDate formats time to YYYY-MM-DD in local timezone.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(layoutDate)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in local timezone.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(layoutDateTime)
}

var (
	partialDateRe = regexp.MustCompile(`^(\d{1,2})\s*/\s*(\d{1,2})(?:\s*/\s*(\d{2,4}))?$`)
	letterPrefix  = regexp.MustCompile(`^[A-Za-z]+\s*`)
)

// ParseImportDate handles the date soup found in agency spreadsheets:
// "13/1", "13/01", "13/1/2026", full ISO dates, ISO date-times, and cells
// with stray letter prefixes ("C13/1"). Partial dates get the caller's
// default year. Returns an error when nothing usable remains; import rows
// with such dates are skipped, never fatal.
func ParseImportDate(raw string, defaultYear, defaultMonth int) (time.Time, error) {
	s := strings.TrimSpace(raw)
	s = letterPrefix.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date vide")
	}

	if m := partialDateRe.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		y := defaultYear
		if m[3] != "" {
			y, _ = strconv.Atoi(m[3])
			if y > 0 && y < 100 {
				y += 2000
			}
		}
		t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.Local)
		// time.Date normalizes out-of-range values; reject those
		if t.Day() != d || int(t.Month()) != mo {
			return time.Time{}, fmt.Errorf("date invalide: %q", raw)
		}
		return t, nil
	}

	for _, layout := range []string{layoutDate, layoutDateTime, "02/01/2006", "2006/01/02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			// spreadsheet epoch artifacts land in 1900; force the default period
			if t.Year() == 1900 {
				t = time.Date(defaultYear, time.Month(defaultMonth), t.Day(), 0, 0, 0, 0, time.Local)
			}
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("date illisible: %q", raw)
}
