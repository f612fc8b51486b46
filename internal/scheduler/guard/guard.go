package guard

import (
	"errors"
	"time"

	contractdomain "github.com/smallbiznis/netbill/internal/contract/domain"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
)

var (
	ErrContractEnded      = errors.New("contract_ended")
	ErrContractNotStarted = errors.New("contract_not_started")
	ErrMissingTariff      = errors.New("contract_missing_tariff")
	ErrNoBalance          = errors.New("customer_no_balance")
)

// EnsureContractBillable checks that a contract can be invoiced for the
// given billing day. Activity is judged at asOf, the instant of the scan, so
// a contract ending on its billing day still gets its last invoice.
func EnsureContractBillable(c contractdomain.Contract, asOf, billingDay time.Time) error {
	if !c.IsActive(asOf) {
		return ErrContractEnded
	}
	if c.StartDate.After(billingDay) {
		return ErrContractNotStarted
	}
	if c.TariffID == nil || *c.TariffID == 0 {
		return ErrMissingTariff
	}
	return nil
}

// EnsureCustomerCanSettle checks that a locked customer still has funds.
func EnsureCustomerCanSettle(c customerdomain.Customer) error {
	if c.Balance <= 0 {
		return ErrNoBalance
	}
	return nil
}
