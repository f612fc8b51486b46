package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	billingeventdomain "github.com/smallbiznis/netbill/internal/billingevent/domain"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/netbill/internal/observability/metrics"
	"github.com/smallbiznis/netbill/internal/scheduler/guard"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const allocationSource = "allocation"

// AllocationReport summarizes one allocate_payments run.
type AllocationReport struct {
	InvoicesPaid       int `json:"invoices_paid"`
	CustomersProcessed int `json:"customers_processed"`
	Skipped            int `json:"skipped"`
	Failed             int `json:"failed"`
}

type settledInvoice struct {
	id           snowflake.ID
	from         invoicedomain.InvoiceStatus
	amount       int64
	balanceAfter int64
}

type customerAllocation struct {
	settled []settledInvoice
	skipped bool
}

// AllocatePayments settles open invoices oldest first from each customer's
// balance. Customers are processed concurrently and independently; a
// customer whose next invoice exceeds the balance stops there.
func (s *Scheduler) AllocatePayments(ctx context.Context) (AllocationReport, error) {
	var report AllocationReport

	concurrency := s.allocatorConcurrency()
	ctx, run, owner := s.ensureJobRun(ctx, JobAllocatePayments, concurrency)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}
	schedMetrics := obsmetrics.Scheduler()

	ids, err := s.customers.ListIDsWithPositiveBalance(ctx, s.db)
	if err != nil {
		return report, fmt.Errorf("list customers with balance: %w", err)
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(concurrency)

	for _, id := range ids {
		customerID := id
		g.Go(func() error {
			// per-customer failures land in the report; only cancellation
			// is returned to the group
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := s.allocateCustomer(ctx, customerID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed++
				schedMetrics.IncItemFailed(JobAllocatePayments, "customers")
				s.logSchedulerError(ctx, run, "scheduler.customer.allocation_failed", JobAllocatePayments, err,
					zap.String("customer_id", idString(customerID)),
				)
			case result.skipped:
				report.Skipped++
				schedMetrics.IncItemSkipped(JobAllocatePayments, obsmetrics.SchedulerItemSkippedLockHeld)
			default:
				report.CustomersProcessed++
				report.InvoicesPaid += len(result.settled)
				run.AddProcessed(len(result.settled))
			}
			return nil
		})
	}
	waitErr := g.Wait()

	schedMetrics.AddItemsProcessed(JobAllocatePayments, "customers", report.CustomersProcessed)
	schedMetrics.AddItemsProcessed(JobAllocatePayments, "invoices", report.InvoicesPaid)

	s.logger(ctx).Info("allocation run summary",
		zap.Int("customers", len(ids)),
		zap.Int("customers_processed", report.CustomersProcessed),
		zap.Int("invoices_paid", report.InvoicesPaid),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	if waitErr != nil {
		return report, waitErr
	}
	return report, ctx.Err()
}

func (s *Scheduler) allocateCustomer(ctx context.Context, customerID snowflake.ID) (customerAllocation, error) {
	var result customerAllocation
	schedMetrics := obsmetrics.Scheduler()

	release, ok, err := s.acquireCustomerLock(ctx, customerID)
	if err != nil {
		return result, err
	}
	defer release()
	if !ok {
		result.skipped = true
		return result, nil
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.lockCustomerRow(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if guard.EnsureCustomerCanSettle(*customer) != nil {
			return nil
		}

		invoices, err := s.invoiceRepo.ListOpenByCustomer(ctx, tx, customerID)
		if err != nil {
			return err
		}

		balance := customer.Balance
		for _, invoice := range invoices {
			if balance < invoice.Amount {
				break
			}
			debited, err := s.customers.Debit(ctx, tx, customerID, invoice.Amount, now)
			if err != nil {
				return err
			}
			if debited == 0 {
				break
			}
			marked, err := s.invoiceRepo.MarkPaid(ctx, tx, invoice.ID, now)
			if err != nil {
				return err
			}
			if marked == 0 {
				return fmt.Errorf("invoice %s changed during allocation", invoice.ID)
			}
			balance -= invoice.Amount

			if err := s.events.Emit(ctx, tx, billingeventdomain.EventInvoicePaid, invoice.ID,
				fmt.Sprintf("%s:%s", billingeventdomain.EventInvoicePaid, invoice.ID),
				map[string]any{
					"invoice_id":    invoice.ID.String(),
					"customer_id":   customerID.String(),
					"amount":        invoice.Amount,
					"balance_after": balance,
					"source":        allocationSource,
				}); err != nil {
				return err
			}
			result.settled = append(result.settled, settledInvoice{
				id:           invoice.ID,
				from:         invoice.Status,
				amount:       invoice.Amount,
				balanceAfter: balance,
			})
		}
		return nil
	})
	if err != nil {
		return customerAllocation{}, err
	}

	for _, settled := range result.settled {
		schedMetrics.AddInvoiceTransitions(string(settled.from), obsmetrics.InvoiceStatusPaid, 1)
		if s.metrics != nil {
			s.metrics.RecordInvoicePaid(ctx, allocationSource)
		}
		s.logInvoiceSettled(ctx, customerID, settled.id, settled.amount, settled.balanceAfter)
	}
	return result, nil
}
