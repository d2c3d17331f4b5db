package utils

import "time"

// ParseDate parses a day-granular date in the API's YYYY-MM-DD layout.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// TruncateToDay drops the time-of-day component; booking windows are
// compared at day granularity only.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// InclusiveDays counts the days in [start, end], so equal dates count
// as one day.
func InclusiveDays(start, end time.Time) int {
	start = TruncateToDay(start)
	end = TruncateToDay(end)
	return int(end.Sub(start).Hours()/24) + 1
}
