package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRegex   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	slashDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)
	relativeRegex  = regexp.MustCompile(`(?i)(\d+)\+?\s*(m|min|mins|minutes?|h|hr|hrs|hours?|d|days?|w|wk|weeks?|mo|months?)\b`)
	yearOnlyRegex  = regexp.MustCompile(`\b(20\d{2})\b`)
)

// ParsePostedDate understands the date shapes the boards print: ISO dates,
// dd/mm/yyyy, and relative ages like "3d ago", "30+ days ago" or "Just posted".
// ok is false when nothing could be read.
func ParsePostedDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return time.Time{}, false
	}
	lower := strings.ToLower(s)

	//ISO "2026-01-27" or "2026-01-27T..."
	if isoDateRegex.MatchString(s) {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}

	//dd/mm/yyyy
	if m := slashDateRegex.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}

	switch {
	case strings.Contains(lower, "just") || strings.Contains(lower, "today") || strings.Contains(lower, "new"):
		return now, true
	case strings.Contains(lower, "yesterday"):
		return now.AddDate(0, 0, -1), true
	}

	if m := relativeRegex.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch unit := m[2]; {
		case strings.HasPrefix(unit, "mo"):
			return now.AddDate(0, -n, 0), true
		case strings.HasPrefix(unit, "m"):
			return now.Add(-time.Duration(n) * time.Minute), true
		case strings.HasPrefix(unit, "h"):
			return now.Add(-time.Duration(n) * time.Hour), true
		case strings.HasPrefix(unit, "d"):
			return now.AddDate(0, 0, -n), true
		case strings.HasPrefix(unit, "w"):
			return now.AddDate(0, 0, -7*n), true
		}
	}

	//year only: treat as 1 January
	if m := yearOnlyRegex.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// IsRecent reports whether a posted date is at most maxAge old. Dates that
// cannot be read are kept, and so are dates up to two days in the future
// to absorb timezone differences.
func IsRecent(posted string, maxAge time.Duration, now time.Time) bool {
	t, ok := ParsePostedDate(posted, now)
	if !ok {
		return true
	}
	diff := now.Sub(t)
	if diff > maxAge {
		return false
	}
	if diff < -2*24*time.Hour {
		return false
	}
	return true
}
