package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	"github.com/smallbiznis/netbill/internal/lock"
	obsmetrics "github.com/smallbiznis/netbill/internal/observability/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func noopRelease() {}

// acquireCustomerLock takes the redis mutex for a customer when redis is
// configured. ok is false when another worker holds it.
func (s *Scheduler) acquireCustomerLock(ctx context.Context, customerID snowflake.ID) (release func(), ok bool, err error) {
	if !s.locker.Enabled() {
		return noopRelease, true, nil
	}

	key := lock.CustomerKey(int64(customerID))
	lockStart := time.Now()
	token, ok, err := s.locker.TryLock(ctx, key, s.customerLockTTL())
	obsmetrics.Scheduler().ObserveLockWait(obsmetrics.LockResourceCustomerRedis, time.Since(lockStart))
	if err != nil {
		return noopRelease, false, fmt.Errorf("customer lock: %w", err)
	}
	if !ok {
		return noopRelease, false, nil
	}

	return func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger(ctx).Warn("failed to release customer lock",
				zap.String("customer_id", idString(customerID)),
				zap.Error(err),
			)
		}
	}, true, nil
}

// lockCustomerRow holds the customer row until tx ends.
func (s *Scheduler) lockCustomerRow(ctx context.Context, tx *gorm.DB, customerID snowflake.ID) (*customerdomain.Customer, error) {
	lockStart := time.Now()
	customer, err := s.customers.FindByIDForUpdate(ctx, tx, customerID)
	obsmetrics.Scheduler().ObserveLockWait(obsmetrics.LockResourceCustomerRow, time.Since(lockStart))
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, customerdomain.ErrNotFound
	}
	return customer, nil
}
