package clock

import "time"

const day = 24 * time.Hour

// AddDays moves t by n calendar days, keeping the wall-clock time of day.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// SubDays moves t back by n calendar days.
func SubDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, -n)
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsSameDay reports whether a and b fall on the same calendar day in a's location.
func IsSameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween returns the number of whole days from a to b, truncated toward zero.
// It is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / day)
}

// IsPast reports whether t is strictly before now.
func IsPast(t, now time.Time) bool {
	return t.Before(now)
}
