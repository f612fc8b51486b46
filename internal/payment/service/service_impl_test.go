package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/billingevent"
	"github.com/smallbiznis/netbill/internal/clock"
	customerrepo "github.com/smallbiznis/netbill/internal/customer/repository"
	paymentdomain "github.com/smallbiznis/netbill/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/netbill/internal/payment/repository"
	paymentservice "github.com/smallbiznis/netbill/internal/payment/service"
	"github.com/smallbiznis/netbill/internal/testutil"
	"github.com/smallbiznis/netbill/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newPaymentService(t *testing.T) (paymentdomain.Service, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	node, err := snowflake.NewNode(10)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2024, 4, 2, 11, 0, 0, 0, time.UTC))
	svc := paymentservice.NewService(paymentservice.Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fake,
		Repo:         paymentrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
		Events:       billingevent.NewOutbox(node, fake),
	})
	return svc, db
}

func TestRecordDoesNotTouchBalance(t *testing.T) {
	svc, db := newPaymentService(t)
	testutil.InsertCustomer(t, db, 1, 50, "email")

	payment, err := svc.Record(context.Background(), paymentdomain.RecordPaymentRequest{
		CustomerID: 1,
		Amount:     500,
		Method:     paymentdomain.MethodCash,
	})
	require.NoError(t, err)
	assert.Nil(t, payment.AppliedAt)
	assert.EqualValues(t, 50, testutil.Balance(t, db, 1))
}

func TestApplyToBalanceTwiceDoublesCredit(t *testing.T) {
	svc, db := newPaymentService(t)
	testutil.InsertCustomer(t, db, 1, 0, "email")
	ctx := context.Background()

	payment, err := svc.Record(ctx, paymentdomain.RecordPaymentRequest{CustomerID: 1, Amount: 500, Method: paymentdomain.MethodCard})
	require.NoError(t, err)

	require.NoError(t, svc.ApplyToBalance(ctx, payment.ID))
	assert.EqualValues(t, 500, testutil.Balance(t, db, 1))

	require.NoError(t, svc.ApplyToBalance(ctx, payment.ID))
	assert.EqualValues(t, 1000, testutil.Balance(t, db, 1))

	stored, err := svc.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.AppliedAt)
	assert.EqualValues(t, 2, testutil.Count(t, db, `SELECT COUNT(1) FROM billing_events WHERE event_type = 'payment.applied'`))
}

func TestRecordValidation(t *testing.T) {
	svc, db := newPaymentService(t)
	testutil.InsertCustomer(t, db, 1, 0, "email")
	ctx := context.Background()

	_, err := svc.Record(ctx, paymentdomain.RecordPaymentRequest{CustomerID: 1, Amount: 0, Method: "cash"})
	assert.ErrorIs(t, err, validation.ErrValidation)

	_, err = svc.Record(ctx, paymentdomain.RecordPaymentRequest{CustomerID: 2, Amount: 10, Method: "cash"})
	assert.ErrorIs(t, err, paymentdomain.ErrCustomerNotFound)

	assert.ErrorIs(t, svc.ApplyToBalance(ctx, 77), paymentdomain.ErrNotFound)
}
