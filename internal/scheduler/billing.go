package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/netbill/internal/clock"
	contractdomain "github.com/smallbiznis/netbill/internal/contract/domain"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/netbill/internal/observability/metrics"
	"github.com/smallbiznis/netbill/internal/scheduler/guard"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	skipReasonNotStarted = "not_started"
	skipReasonEnded      = "ended"
)

// BillingReport summarizes one generate_invoices run.
type BillingReport struct {
	InvoicesCreated   int   `json:"invoices_created"`
	NotificationsSent int   `json:"notifications_sent"`
	OverdueMarked     int64 `json:"overdue_marked"`
	Failed            int   `json:"failed"`
}

type contractOutcome struct {
	billed   bool
	created  bool
	notified bool
}

// SweepOverdue moves pending invoices due before today to overdue.
func (s *Scheduler) SweepOverdue(ctx context.Context) (int64, error) {
	marked, err := s.invoices.CheckOverdue(ctx)
	if err != nil {
		return 0, fmt.Errorf("overdue sweep: %w", err)
	}
	obsmetrics.Scheduler().AddInvoiceTransitions(obsmetrics.InvoiceStatusPending, obsmetrics.InvoiceStatusOverdue, int(marked))
	return marked, nil
}

// GenerateInvoices sweeps overdue invoices, then issues tomorrow's invoice
// for every active contract whose anniversary falls tomorrow. Per-contract
// failures are counted and logged; only the sweep and the contract scan
// fail the run.
func (s *Scheduler) GenerateInvoices(ctx context.Context) (BillingReport, error) {
	var report BillingReport

	ctx, run, owner := s.ensureJobRun(ctx, JobGenerateInvoices, 0)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}
	schedMetrics := obsmetrics.Scheduler()

	marked, err := s.SweepOverdue(ctx)
	if err != nil {
		return report, err
	}
	report.OverdueMarked = marked

	now := s.clock.Now()
	tomorrow := clock.Today(s.clock).AddDate(0, 0, 1)

	contracts, err := s.contracts.ListActive(ctx, now)
	if err != nil {
		return report, fmt.Errorf("list active contracts: %w", err)
	}

	for _, contract := range contracts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome, err := s.billContract(ctx, contract, now, tomorrow)
		if err != nil {
			if reason, ok := skipReason(err); ok {
				schedMetrics.IncItemSkipped(JobGenerateInvoices, reason)
				continue
			}
			report.Failed++
			schedMetrics.IncItemFailed(JobGenerateInvoices, "contracts")
			s.logSchedulerError(ctx, run, "scheduler.contract.billing_failed", JobGenerateInvoices, err,
				zap.String("contract_id", idString(contract.ID)),
			)
			continue
		}
		if outcome.created {
			report.InvoicesCreated++
		}
		if outcome.notified {
			report.NotificationsSent++
		}
		if outcome.billed {
			run.AddProcessed(1)
		}
	}
	schedMetrics.AddItemsProcessed(JobGenerateInvoices, "contracts", len(contracts))

	s.logger(ctx).Info("billing run summary",
		zap.Int("active_contracts", len(contracts)),
		zap.Int("invoices_created", report.InvoicesCreated),
		zap.Int("notifications_sent", report.NotificationsSent),
		zap.Int64("overdue_marked", report.OverdueMarked),
		zap.Int("failed", report.Failed),
		zap.String("billing_date", tomorrow.Format(time.DateOnly)),
	)
	return report, nil
}

// skipReason reports guard outcomes that are not failures.
func skipReason(err error) (string, bool) {
	switch {
	case errors.Is(err, guard.ErrContractNotStarted):
		return skipReasonNotStarted, true
	case errors.Is(err, guard.ErrContractEnded):
		return skipReasonEnded, true
	default:
		return "", false
	}
}

func (s *Scheduler) billContract(ctx context.Context, contract contractdomain.Contract, now, tomorrow time.Time) (contractOutcome, error) {
	var outcome contractOutcome
	if !IsBillingDay(contract.StartDate, tomorrow) {
		return outcome, nil
	}
	if err := guard.EnsureContractBillable(contract, now, tomorrow); err != nil {
		return outcome, err
	}
	outcome.billed = true

	tariff, err := s.catalog.GetTariff(ctx, *contract.TariffID)
	if err != nil {
		return outcome, fmt.Errorf("tariff: %w", err)
	}
	customer, err := s.customers.FindByID(ctx, s.db, contract.CustomerID)
	if err != nil {
		return outcome, fmt.Errorf("customer: %w", err)
	}
	if customer == nil {
		return outcome, customerdomain.ErrNotFound
	}

	var invoice invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.invoiceRepo.FindByDueDate(ctx, tx, contract.ID, tomorrow)
		if err != nil {
			return err
		}
		if existing != nil {
			invoice = *existing
			return nil
		}
		invoice, err = s.invoices.CreateTx(ctx, tx, invoicedomain.Draft{
			ContractID:  contract.ID,
			CustomerID:  contract.CustomerID,
			Amount:      tariff.Price,
			IssueDate:   s.clock.Now(),
			DueDate:     tomorrow,
			Description: invoicedomain.CycleDescription(tariff.Name, tomorrow),
			Source:      invoicedomain.SourceBillingCycle,
		})
		if err != nil {
			return err
		}
		outcome.created = true
		return nil
	})
	if err != nil {
		return contractOutcome{billed: true}, fmt.Errorf("invoice: %w", err)
	}
	if outcome.created {
		s.logInvoiceGenerated(ctx, contract.ID, invoice.ID, tomorrow)
	}

	// the invoice stands even if the reminder cannot be queued
	if err := s.notifier.Notify(ctx, *customer, invoice); err != nil {
		s.logger(ctx).Warn("notification not queued",
			zap.String("contract_id", idString(contract.ID)),
			zap.String("invoice_id", idString(invoice.ID)),
			zap.Error(err),
		)
		return outcome, nil
	}
	outcome.notified = true
	return outcome, nil
}
