package guard

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	contractdomain "github.com/smallbiznis/netbill/internal/contract/domain"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEnsureContractBillable(t *testing.T) {
	tariff := snowflake.ID(7)
	ended := date(2024, 3, 1)
	lastDay := date(2024, 4, 10)

	cases := []struct {
		name     string
		contract contractdomain.Contract
		want     error
	}{
		{
			name:     "active",
			contract: contractdomain.Contract{StartDate: date(2024, 1, 10), TariffID: &tariff},
		},
		{
			name:     "ended",
			contract: contractdomain.Contract{StartDate: date(2024, 1, 10), EndDate: &ended, TariffID: &tariff},
			want:     ErrContractEnded,
		},
		{
			name:     "ends_on_billing_day",
			contract: contractdomain.Contract{StartDate: date(2024, 1, 10), EndDate: &lastDay, TariffID: &tariff},
		},
		{
			name:     "not_started",
			contract: contractdomain.Contract{StartDate: date(2024, 5, 10), TariffID: &tariff},
			want:     ErrContractNotStarted,
		},
		{
			name:     "no_tariff",
			contract: contractdomain.Contract{StartDate: date(2024, 1, 10)},
			want:     ErrMissingTariff,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := EnsureContractBillable(tc.contract, date(2024, 4, 9), date(2024, 4, 10))
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEnsureCustomerCanSettle(t *testing.T) {
	assert.NoError(t, EnsureCustomerCanSettle(customerdomain.Customer{Balance: 1}))
	assert.ErrorIs(t, EnsureCustomerCanSettle(customerdomain.Customer{}), ErrNoBalance)
}
