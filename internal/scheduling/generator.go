package scheduling

import "time"

// Interval is a half-open working window [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// GenerateShifts splits a job's range into one interval per calendar day (UTC),
// from start's date to end's date inclusive. Every interval uses start's clock
// time as its start and end's clock time as its end; only the date advances.
// The result always has at least one element.
func GenerateShifts(start, end time.Time) []Interval {
	start, end = start.UTC(), end.UTC()
	first := truncateToDay(start)

	days := daysBetween(first, truncateToDay(end))
	if days < 0 {
		days = 0
	}

	shifts := make([]Interval, 0, days+1)
	for d := 0; d <= days; d++ {
		day := first.AddDate(0, 0, d)
		shifts = append(shifts, Interval{
			Start: day.Add(clockOf(start)),
			End:   day.Add(clockOf(end)),
		})
	}
	return shifts
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days between two UTC midnights.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// clockOf returns the time-of-day of t (UTC) as an offset from midnight,
// including sub-second precision.
func clockOf(t time.Time) time.Duration {
	return t.UTC().Sub(truncateToDay(t))
}

func sameDay(a, b time.Time) bool {
	return truncateToDay(a).Equal(truncateToDay(b))
}
