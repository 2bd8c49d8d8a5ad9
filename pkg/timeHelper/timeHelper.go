package timehelper

import "time"

// Clock returns the current time. Services take one so tests can pin time.
type Clock func() time.Time

// Now is the production clock. UTC drops the monotonic reading so stored and
// reloaded times compare equal.
func Now() time.Time {
	return time.Now().UTC()
}

// Fixed returns a clock that always reports t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// DayKey formats t as 'YYYY-MM-DD'.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
