package scheduler

import (
	"time"

	"github.com/smallbiznis/netbill/internal/clock"
)

// BillingDate returns the contract's billing anniversary in the month of
// target. The start day is clamped to the last day of that month, so a
// contract started on Jan 31 bills on Feb 28 (or Feb 29).
func BillingDate(start, target time.Time) time.Time {
	target = clock.DateOf(target)
	day := clock.DateOf(start).Day()
	if last := daysIn(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, time.UTC)
}

// IsBillingDay reports whether a contract started on start bills on day.
func IsBillingDay(start, day time.Time) bool {
	day = clock.DateOf(day)
	return BillingDate(start, day).Equal(day)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
