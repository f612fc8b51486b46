package clock

import (
	"testing"
	"time"
)

func TestDateOfTruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)
	in := time.Date(2026, 3, 1, 1, 30, 0, 0, loc)

	got := DateOf(in)
	want := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	c.Advance(2 * time.Hour)
	if got := Today(c); !got.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected today %v", got)
	}

	c.Set(start)
	if !c.Now().Equal(start) {
		t.Fatalf("expected reset to %v, got %v", start, c.Now())
	}
}
