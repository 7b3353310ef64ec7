package types

import "time"

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

// SystemClock reads the wall clock in the local zone.
func SystemClock() time.Time {
	return time.Now()
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WindowDates returns the N calendar dates ending at today, oldest first.
func WindowDates(today time.Time, days int) []string {
	if days <= 0 {
		return nil
	}
	start := StartOfDay(today).AddDate(0, 0, -(days - 1))
	dates := make([]string, 0, days)
	for i := 0; i < days; i++ {
		dates = append(dates, FormatDate(start.AddDate(0, 0, i)))
	}
	return dates
}
