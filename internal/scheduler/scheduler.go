package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/billingevent"
	billingeventdomain "github.com/smallbiznis/netbill/internal/billingevent/domain"
	catalogdomain "github.com/smallbiznis/netbill/internal/catalog/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/config"
	contractdomain "github.com/smallbiznis/netbill/internal/contract/domain"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	"github.com/smallbiznis/netbill/internal/lock"
	"github.com/smallbiznis/netbill/internal/notification"
	obscontext "github.com/smallbiznis/netbill/internal/observability/context"
	obsmetrics "github.com/smallbiznis/netbill/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Contracts    contractdomain.Service
	Invoices     invoicedomain.Service
	InvoiceRepo  invoicedomain.Repository
	CustomerRepo customerdomain.Repository
	Catalog      catalogdomain.Catalog
	Notifier     notification.Notifier
	Events       billingeventdomain.Emitter

	Relay   *billingevent.Relay         `optional:"true"`
	Locker  *lock.Locker                `optional:"true"`
	Billing *config.BillingConfigHolder `optional:"true"`
	Metrics *obsmetrics.Metrics         `optional:"true"`
	Config  Config                      `optional:"true"`
}

type Scheduler struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         Config
	genID       *snowflake.Node
	clock       clock.Clock
	contracts   contractdomain.Service
	invoices    invoicedomain.Service
	invoiceRepo invoicedomain.Repository
	customers   customerdomain.Repository
	catalog     catalogdomain.Catalog
	notifier    notification.Notifier
	events      billingeventdomain.Emitter
	relay       *billingevent.Relay
	locker      *lock.Locker
	billing     *config.BillingConfigHolder
	metrics     *obsmetrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil || p.Contracts == nil ||
		p.Invoices == nil || p.InvoiceRepo == nil || p.CustomerRepo == nil || p.Catalog == nil ||
		p.Notifier == nil || p.Events == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:          p.DB,
		log:         p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:         p.Config.withDefaults(),
		genID:       p.GenID,
		clock:       p.Clock,
		contracts:   p.Contracts,
		invoices:    p.Invoices,
		invoiceRepo: p.InvoiceRepo,
		customers:   p.CustomerRepo,
		catalog:     p.Catalog,
		notifier:    p.Notifier,
		events:      p.Events,
		relay:       p.Relay,
		locker:      p.Locker,
		billing:     p.Billing,
		metrics:     p.Metrics,
	}, nil
}

type strictTimeoutsKey struct{}

// WithStrictTimeouts makes a timed out job return its error. Cron ticks leave
// it unset so the next tick picks the work up; on-demand runs set it so the
// caller sees the timeout.
func WithStrictTimeouts(ctx context.Context) context.Context {
	return context.WithValue(ctx, strictTimeoutsKey{}, true)
}

func strictTimeouts(ctx context.Context) bool {
	v, _ := ctx.Value(strictTimeoutsKey{}).(bool)
	return v
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	batchSize int,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx = obscontext.WithActor(ctx, "system", "scheduler")
	ctx, run, owner := s.ensureJobRun(ctx, name, batchSize)
	if owner {
		s.logJobStart(ctx, run)
	}
	log := s.logger(ctx).With(
		zap.String("job", name),
		zap.String("run_id", run.runID),
	)
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if owner {
		if err != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	// a timed out run is picked up by the next tick
	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
	}
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		if !strictTimeouts(parent) {
			return nil
		}
	}

	return fmt.Errorf("%s: %w", name, err)
}

// RunBilling runs the invoice generation job, overdue sweep included.
func (s *Scheduler) RunBilling(ctx context.Context) error {
	return s.runJob(ctx, JobGenerateInvoices, 0, s.cfg.BillingTimeout, func(ctx context.Context) error {
		_, err := s.GenerateInvoices(ctx)
		return err
	})
}

// RunOverdueSweep runs the standalone overdue sweep.
func (s *Scheduler) RunOverdueSweep(ctx context.Context) error {
	return s.runJob(ctx, JobOverdueSweep, 0, s.cfg.BillingTimeout, func(ctx context.Context) error {
		_, err := s.SweepOverdue(ctx)
		return err
	})
}

// RunAllocation runs the payment allocator.
func (s *Scheduler) RunAllocation(ctx context.Context) error {
	return s.runJob(ctx, JobAllocatePayments, s.allocatorConcurrency(), s.cfg.AllocatorTimeout, func(ctx context.Context) error {
		_, err := s.AllocatePayments(ctx)
		return err
	})
}

// RunRelay publishes one batch of pending outbox events.
func (s *Scheduler) RunRelay(ctx context.Context) error {
	if s.relay == nil {
		return nil
	}
	return s.runJob(ctx, JobRelayEvents, 0, s.cfg.RelayTimeout, func(ctx context.Context) error {
		published, err := s.relay.ProcessPending(ctx)
		obsmetrics.Scheduler().AddItemsProcessed(JobRelayEvents, "billing_events", published)
		return err
	})
}

// RunBillingSlot is the nightly billing cron entry.
func (s *Scheduler) RunBillingSlot(parent context.Context) error {
	var err error
	if s.isJobEnabled(JobGenerateInvoices) {
		err = errors.Join(err, s.RunBilling(parent))
	}
	if s.isJobEnabled(JobRelayEvents) {
		err = errors.Join(err, s.RunRelay(parent))
	}
	return err
}

// RunPaymentSlot is the payment cron entry: overdue sweep first, then
// allocation.
func (s *Scheduler) RunPaymentSlot(parent context.Context) error {
	var err error
	if s.isJobEnabled(JobOverdueSweep) {
		err = errors.Join(err, s.RunOverdueSweep(parent))
	}
	if s.isJobEnabled(JobAllocatePayments) {
		err = errors.Join(err, s.RunAllocation(parent))
	}
	if s.isJobEnabled(JobRelayEvents) {
		err = errors.Join(err, s.RunRelay(parent))
	}
	return err
}

// RunOnce runs every enabled job in billing order.
func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name    string
		Enabled bool
		Run     func(context.Context) error
	}{
		{JobGenerateInvoices, s.isJobEnabled(JobGenerateInvoices), s.RunBilling},
		{JobAllocatePayments, s.isJobEnabled(JobAllocatePayments), s.RunAllocation},
		{JobRelayEvents, s.isJobEnabled(JobRelayEvents), s.RunRelay},
	}

	for _, job := range jobs {
		if job.Enabled {
			err = errors.Join(err, job.Run(parent))
		}
	}
	return err
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// empty means every job runs
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

func (s *Scheduler) allocatorConcurrency() int {
	cfg := config.DefaultBillingConfig()
	if s.billing != nil {
		cfg = s.billing.Get()
	}
	if cfg.AllocatorConcurrency <= 0 {
		return 1
	}
	return cfg.AllocatorConcurrency
}

func (s *Scheduler) customerLockTTL() time.Duration {
	cfg := config.DefaultBillingConfig()
	if s.billing != nil {
		cfg = s.billing.Get()
	}
	if cfg.CustomerLockTTL <= 0 {
		return time.Minute
	}
	return cfg.CustomerLockTTL
}
