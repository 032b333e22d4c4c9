package leave

import (
	"math"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"

	millisPerDay = 86_400_000
)

// NormalizeDate drops the time of day, keeping t's location.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaySpan returns the whole days from start to end, end exclusive. Both are
// normalized to midnight first and the result is rounded, so a DST shift of
// an hour never changes it. DaySpan(a, b) == -DaySpan(b, a).
func DaySpan(start, end time.Time) int {
	ms := NormalizeDate(end).Sub(NormalizeDate(start)).Milliseconds()
	return int(math.Round(float64(ms) / millisPerDay))
}

// ParseDate reads an ISO-8601 calendar date as local midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
