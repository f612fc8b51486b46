package format

import (
	"testing"
	"time"
)

func TestFormatAmount(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00 UAH",
		5:      "0.05 UAH",
		30000:  "300.00 UAH",
		123456: "1234.56 UAH",
		-250:   "-2.50 UAH",
	}
	for in, want := range cases {
		if got := FormatAmount(in, ""); got != want {
			t.Fatalf("FormatAmount(%d) = %q, want %q", in, got, want)
		}
	}
	if got := FormatAmount(100, "usd"); got != "1.00 USD" {
		t.Fatalf("unexpected currency rendering %q", got)
	}
}

func TestReference(t *testing.T) {
	issued := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	if got := Reference(issued, 1234567890); got != "INV-20240229-567890" {
		t.Fatalf("unexpected reference %q", got)
	}
	if got := FormatDate(time.Time{}); got != "-" {
		t.Fatalf("expected dash for zero date, got %q", got)
	}
}
