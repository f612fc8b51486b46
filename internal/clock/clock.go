package clock

import "time"

// Clock abstracts wall time so date-driven billing can be tested.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// DateOf truncates t to midnight UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current date of c.
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}
