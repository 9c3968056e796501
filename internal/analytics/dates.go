package analytics

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// parseDate accepts YYYY-MM-DD or RFC3339. Bare dates are interpreted in loc.
func parseDate(s string, loc *time.Location) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), false, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

// dateRange resolves the start and end arguments of a tool. A bare end date
// covers that whole day.
type dateRange struct {
	Start time.Time
	End   time.Time
}

func parseRange(start, end string, loc *time.Location) (dateRange, error) {
	s, _, err := parseDate(start, loc)
	if err != nil {
		return dateRange{}, fmt.Errorf("start_date: %w", err)
	}
	e, bare, err := parseDate(end, loc)
	if err != nil {
		return dateRange{}, fmt.Errorf("end_date: %w", err)
	}
	if bare {
		e = endOfDay(e)
	}
	return dateRange{Start: s, End: e}, nil
}

// days counts calendar days from Start to End, both inclusive. It is zero or
// negative when End precedes Start.
func (r dateRange) days() int {
	return daysBetween(r.Start, r.End) + 1
}

// contains reports whether t falls on a calendar day within the range.
func (r dateRange) contains(t time.Time) bool {
	return !t.Before(startOfDay(r.Start)) && !t.After(r.End)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// daysBetween returns the number of calendar days from a to b.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
