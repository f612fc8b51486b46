package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillingConfigDefaultsWhenFileMissing(t *testing.T) {
	holder, err := newBillingConfigHolder(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultBillingConfig(), holder.Get())
}

func TestBillingConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	body := []byte("billing:\n  approvalInvoiceDueDays: 14\n  notifierTimeout: 3s\n  allocatorConcurrency: 2\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "billing.yml"), body, 0o600))

	holder, err := newBillingConfigHolder(dir)
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, 14, cfg.ApprovalInvoiceDueDays)
	assert.Equal(t, 3*time.Second, cfg.NotifierTimeout)
	assert.Equal(t, 2, cfg.AllocatorConcurrency)
	assert.Equal(t, time.Minute, cfg.CustomerLockTTL)
}

func TestBillingConfigRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	body := []byte("billing:\n  allocatorConcurrency: 0\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "billing.yml"), body, 0o600))

	_, err := newBillingConfigHolder(dir)
	require.Error(t, err)
}

func TestLoadParsesSchedulerJobs(t *testing.T) {
	t.Setenv("SCHEDULER_ENABLED_JOBS", "generate_invoices, allocate_payments,,")
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()
	assert.Equal(t, []string{"generate_invoices", "allocate_payments"}, cfg.Scheduler.EnabledJobs)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "0 0 * * *", cfg.Scheduler.BillingSchedule)
}
