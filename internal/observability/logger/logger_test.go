package logger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	obscontext "github.com/smallbiznis/netbill/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestWithContextAddsJobRunFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := obscontext.WithJobRun(context.Background(), "generate_invoices", "77")
	ctx = obscontext.WithActor(ctx, "system", "scheduler")
	WithContext(ctx, base).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "generate_invoices", fields["job"])
	assert.Equal(t, "77", fields["run_id"])
	assert.Equal(t, "scheduler", fields["actor_id"])
}

func TestNewWritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "netbill.log")
	log, err := New(nil, Config{ServiceName: "netbill", Level: "info", File: file, MaxSizeMB: 1})
	require.NoError(t, err)

	log.Info("started")
	_ = log.Sync()
	assert.FileExists(t, file)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(nil, Config{Level: "loud"})
	require.Error(t, err)
}

func TestDescribeSQL(t *testing.T) {
	update := describeSQL("UPDATE invoices SET status = 'overdue'")
	assert.Equal(t, "UPDATE", update.operation)
	assert.Equal(t, "invoices", update.table)

	cte := describeSQL("WITH x AS (SELECT 1) SELECT * FROM x")
	assert.Equal(t, "SELECT", cte.operation)

	insert := describeSQL(`INSERT INTO "billing_events" ("id") VALUES (1)`)
	assert.Equal(t, "INSERT", insert.operation)
	assert.Equal(t, "billing_events", insert.table)

	locked := describeSQL("SELECT id FROM public.customers WHERE id = ? FOR UPDATE")
	assert.Equal(t, "customers", locked.table)
	assert.True(t, locked.locking)

	empty := describeSQL("")
	assert.Equal(t, "UNKNOWN", empty.operation)
	assert.Equal(t, "unknown", empty.table)
}

func TestGormLoggerLogMode(t *testing.T) {
	l := NewGormLogger(zap.NewNop(), DefaultGormLoggerConfig())
	silent := l.LogMode(gormlogger.Silent).(*GormLogger)
	assert.Equal(t, gormlogger.Silent, silent.level)
	assert.Equal(t, gormlogger.Warn, l.level)
}

func TestGormLoggerTagsSlowQueryWithJobRun(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core), DefaultGormLoggerConfig())

	ctx := obscontext.WithJobRun(context.Background(), "allocate_payments", "9")
	l.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT * FROM invoices WHERE customer_id = ? FOR UPDATE", 3
	}, nil)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "allocate_payments", fields["job"])
	assert.Equal(t, "9", fields["run_id"])
	assert.Equal(t, "invoices", fields["table"])
	assert.Equal(t, true, fields["row_lock"])
	assert.Equal(t, int64(200), fields["slow_threshold_ms"])
}

func TestGormLoggerSkipsFastQueriesAtWarn(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core), DefaultGormLoggerConfig())

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM contracts", 1
	}, nil)
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM contracts WHERE id = ?", 0
	}, gormlogger.ErrRecordNotFound)

	assert.Equal(t, 0, logs.Len())
}
