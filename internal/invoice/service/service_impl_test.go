package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/billingevent"
	billingeventdomain "github.com/smallbiznis/netbill/internal/billingevent/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	"github.com/smallbiznis/netbill/internal/invoice/repository"
	"github.com/smallbiznis/netbill/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, now time.Time) (invoicedomain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()
	db := testutil.OpenDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(now)
	svc := NewService(ServiceParam{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fake,
		Repo:   repository.Provide(),
		Events: billingevent.NewOutbox(node, fake),
	})
	return svc, db, fake
}

func TestCreateTxPersistsPendingInvoice(t *testing.T) {
	now := time.Date(2024, 1, 30, 14, 0, 0, 0, time.UTC)
	svc, db, _ := newTestService(t, now)
	ctx := context.Background()

	var created invoicedomain.Invoice
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = svc.CreateTx(ctx, tx, invoicedomain.Draft{
			ContractID:  9,
			Amount:      30000,
			DueDate:     now.AddDate(0, 0, 30),
			Description: invoicedomain.ApprovalDescription("Fiber 500"),
			Source:      invoicedomain.SourceApproval,
		})
		return err
	})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPending, got.Status)
	assert.True(t, got.DueDate.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
	assert.True(t, got.IssueDate.Equal(time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Monthly fee for Fiber 500", got.Description)
	assert.EqualValues(t, 1, testutil.Count(t, db,
		`SELECT COUNT(1) FROM billing_events WHERE event_type = ?`, billingeventdomain.EventInvoiceCreated))

	_, err = svc.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, invoicedomain.ErrNotFound)
}

func TestCheckOverdueIsSticky(t *testing.T) {
	now := time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)
	svc, db, fake := newTestService(t, now)
	ctx := context.Background()

	testutil.InsertInvoice(t, db, 1, 9, 100, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "pending")
	testutil.InsertInvoice(t, db, 2, 9, 100, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "pending")
	testutil.InsertInvoice(t, db, 3, 9, 100, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "paid")

	marked, err := svc.CheckOverdue(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, marked)
	assert.Equal(t, "overdue", testutil.InvoiceStatus(t, db, 1))
	assert.Equal(t, "pending", testutil.InvoiceStatus(t, db, 2))
	assert.Equal(t, "paid", testutil.InvoiceStatus(t, db, 3))

	marked, err = svc.CheckOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, marked)
	assert.Equal(t, "overdue", testutil.InvoiceStatus(t, db, 1))

	fake.Advance(24 * time.Hour)
	marked, err = svc.CheckOverdue(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, marked)
	assert.Equal(t, "overdue", testutil.InvoiceStatus(t, db, 1))
	assert.Equal(t, "overdue", testutil.InvoiceStatus(t, db, 2))
}

func TestMarkPaid(t *testing.T) {
	svc, db, _ := newTestService(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	testutil.InsertInvoice(t, db, 1, 9, 100, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "overdue")

	ok, err := svc.MarkPaid(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "paid", testutil.InvoiceStatus(t, db, 1))

	ok, err = svc.MarkPaid(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.MarkPaid(ctx, 2)
	assert.ErrorIs(t, err, invoicedomain.ErrNotFound)
	assert.EqualValues(t, 1, testutil.Count(t, db,
		`SELECT COUNT(1) FROM billing_events WHERE event_type = ?`, billingeventdomain.EventInvoicePaid))
}
