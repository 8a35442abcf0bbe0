package dshield

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate parses date into a Unix timestamp following parse_date's
// rules: a missing date defaults to today; a missing time defaults to
// 00:00:00 if hi is false (the "-f" / from-date case) or 23:59:59 if hi
// is true (the "-t" / to-date case); a trailing "Z" forces UTC,
// otherwise the local zone is used. Accepted date forms are
// "YYYY-MM-DD" and "YYYYMMDD"; accepted time forms are "HH:MM:SS" and
// "HHMMSS", optionally preceded by "T" or a space.
func ParseDate(date string, hi bool, now time.Time) (time.Time, error) {
	s := date
	loc := now.Location()
	if strings.HasSuffix(s, "Z") {
		loc = time.UTC
		s = s[:len(s)-1]
	}

	year, month, day := now.Date()
	hour, min, sec := 0, 0, 0
	if hi {
		hour, min, sec = 23, 59, 59
	}

	datePart, timePart, hasTime := cutDateTime(s)

	if datePart != "" {
		t, err := parseDatePart(datePart)
		if err != nil {
			return time.Time{}, fmt.Errorf("malformed date: %s", date)
		}
		year, month, day = t.Date()
	}

	if hasTime {
		t, err := parseTimePart(timePart)
		if err != nil {
			return time.Time{}, fmt.Errorf("malformed date: %s", date)
		}
		hour, min, sec = t.Hour(), t.Minute(), t.Second()
	}

	return time.Date(year, month, day, hour, min, sec, 0, loc), nil
}

// cutDateTime splits s into its date and time portions, separated by
// "T" or a single space, matching parse_date's separator handling.
func cutDateTime(s string) (datePart, timePart string, hasTime bool) {
	if s == "" {
		return "", "", false
	}
	if i := strings.IndexAny(s, "T "); i >= 0 {
		return s[:i], s[i+1:], true
	}
	// No separator: a bare 6- or 8-digit numeric string is ambiguous
	// between date-only and time-only in the original CLI too, which
	// tries date forms first; anything left over after a successful
	// date parse is treated as a directly-adjacent time (e.g. "20180102150000").
	if len(s) > 8 && (len(s) == 14) {
		return s[:8], s[8:], true
	}
	if len(s) > 10 {
		return s[:10], s[10:], true
	}
	return s, "", false
}

func parseDatePart(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("20060102", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("bad date: %s", s)
}

func parseTimePart(s string) (time.Time, error) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("150405", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("bad time: %s", s)
}
