package scheduler

import (
	"time"

	"github.com/smallbiznis/netbill/internal/config"
)

const (
	JobGenerateInvoices = "generate_invoices"
	JobAllocatePayments = "allocate_payments"
	JobOverdueSweep     = "overdue_sweep"
	JobRelayEvents      = "relay_events"
)

// Config controls cron specs, job selection and per-job timeouts.
type Config struct {
	BillingSchedule      string
	PaymentSweepSchedule string
	EnabledJobs          []string
	BillingTimeout       time.Duration
	AllocatorTimeout     time.Duration
	RelayTimeout         time.Duration
}

func DefaultConfig() Config {
	return Config{
		BillingSchedule:      "0 0 * * *",
		PaymentSweepSchedule: "0 1 * * *",
		BillingTimeout:       10 * time.Minute,
		AllocatorTimeout:     10 * time.Minute,
		RelayTimeout:         30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.BillingSchedule == "" {
		c.BillingSchedule = defaults.BillingSchedule
	}
	if c.PaymentSweepSchedule == "" {
		c.PaymentSweepSchedule = defaults.PaymentSweepSchedule
	}
	if c.BillingTimeout <= 0 {
		c.BillingTimeout = defaults.BillingTimeout
	}
	if c.AllocatorTimeout <= 0 {
		c.AllocatorTimeout = defaults.AllocatorTimeout
	}
	if c.RelayTimeout <= 0 {
		c.RelayTimeout = defaults.RelayTimeout
	}
	return c
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		BillingSchedule:      cfg.Scheduler.BillingSchedule,
		PaymentSweepSchedule: cfg.Scheduler.PaymentSweepSchedule,
		EnabledJobs:          cfg.Scheduler.EnabledJobs,
	}.withDefaults()
}
