package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBillingDateClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		name   string
		start  time.Time
		target time.Time
		want   time.Time
	}{
		{"leap_february", day(2024, 1, 31), day(2024, 2, 10), day(2024, 2, 29)},
		{"plain_february", day(2023, 1, 31), day(2023, 2, 1), day(2023, 2, 28)},
		{"thirty_day_month", day(2024, 3, 31), day(2024, 4, 5), day(2024, 4, 30)},
		{"mid_month", day(2024, 1, 15), day(2024, 6, 1), day(2024, 6, 15)},
		{"first_of_month", day(2023, 11, 1), day(2024, 2, 20), day(2024, 2, 1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.want.Equal(BillingDate(tc.start, tc.target)),
				"got %s", BillingDate(tc.start, tc.target).Format(time.DateOnly))
		})
	}
}

func TestIsBillingDayIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, 1, 31, 18, 30, 0, 0, time.UTC)

	assert.True(t, IsBillingDay(start, time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)))
	assert.False(t, IsBillingDay(start, day(2024, 2, 28)))
	assert.True(t, IsBillingDay(start, day(2023, 2, 28)))
	assert.True(t, IsBillingDay(start, day(2024, 3, 31)))
	assert.False(t, IsBillingDay(start, day(2024, 3, 30)))
}
