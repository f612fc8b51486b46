package format

import (
	"fmt"
	"strings"
	"time"
)

const DefaultCurrency = "UAH"

// FormatAmount renders minor units as "<major>.<minor> <CUR>".
func FormatAmount(amount int64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, currency)
}

func FormatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format(time.DateOnly)
}

// Reference is the short invoice code shown to customers.
func Reference(issueDate time.Time, invoiceID int64) string {
	code := invoiceID % 1000000
	if code < 0 {
		code = -code
	}
	return fmt.Sprintf("INV-%s-%06d", issueDate.UTC().Format("20060102"), code)
}
