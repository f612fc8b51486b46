package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/billingevent"
	billingeventdomain "github.com/smallbiznis/netbill/internal/billingevent/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/contract/domain"
	"github.com/smallbiznis/netbill/internal/contract/repository"
	"github.com/smallbiznis/netbill/internal/testutil"
	"github.com/smallbiznis/netbill/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, now time.Time) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()
	db := testutil.OpenDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(now)
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fake,
		Repo:   repository.Provide(),
		Events: billingevent.NewOutbox(node, fake),
	})
	return svc, db, fake
}

func TestTerminateTwice(t *testing.T) {
	now := time.Date(2024, 5, 20, 10, 30, 0, 0, time.UTC)
	svc, db, _ := newTestService(t, now)
	sub := testutil.SeedSubscriber(t, db, 1000, 20000, 0, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), nil)
	ctx := context.Background()
	id := snowflake.ID(sub.ContractID)

	before, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, before.IsActive(now))

	ok, err := svc.Terminate(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, after.EndDate)
	assert.True(t, after.EndDate.Equal(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)))
	assert.False(t, after.IsActive(now))

	ok, err = svc.Terminate(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, again.EndDate.Equal(*after.EndDate))

	assert.EqualValues(t, 1, testutil.Count(t, db,
		`SELECT COUNT(1) FROM billing_events WHERE event_type = ?`, billingeventdomain.EventContractTerminated))
}

func TestTerminateFutureEndDate(t *testing.T) {
	now := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	svc, db, _ := newTestService(t, now)
	future := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := testutil.SeedSubscriber(t, db, 2000, 20000, 0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), &future)

	ok, err := svc.Terminate(context.Background(), snowflake.ID(sub.ContractID))
	require.NoError(t, err)
	assert.True(t, ok)

	active, err := svc.ListActive(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestTerminateMissingAndSameDay(t *testing.T) {
	now := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)
	svc, db, _ := newTestService(t, now)
	ctx := context.Background()

	_, err := svc.Terminate(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sub := testutil.SeedSubscriber(t, db, 3000, 20000, 0, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), nil)
	_, err = svc.Terminate(ctx, snowflake.ID(sub.ContractID))
	assert.ErrorIs(t, err, validation.ErrValidation)
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(1) FROM contracts WHERE end_date IS NOT NULL`))
}

func TestCreateTxRejectsDuplicateAndBadDates(t *testing.T) {
	now := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	svc, db, _ := newTestService(t, now)
	sub := testutil.SeedSubscriber(t, db, 4000, 20000, 0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	ctx := context.Background()

	draft := domain.Draft{
		CustomerID:          snowflake.ID(sub.CustomerID),
		ConnectionRequestID: snowflake.ID(sub.RequestID),
		AddressID:           snowflake.ID(sub.AddressID),
		ServiceID:           snowflake.ID(sub.ServiceID),
		StartDate:           now,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.CreateTx(ctx, tx, draft)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	testutil.InsertRequest(t, db, 4100, sub.CustomerID, sub.AddressID, sub.TariffID, testutil.StatusRequestApproved)
	draft.ConnectionRequestID = 4100
	end := now
	draft.EndDate = &end
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.CreateTx(ctx, tx, draft)
		return err
	})
	assert.ErrorIs(t, err, validation.ErrValidation)

	draft.EndDate = nil
	var created domain.Contract
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = svc.CreateTx(ctx, tx, draft)
		return err
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive(now))
	assert.EqualValues(t, 1, testutil.Count(t, db,
		`SELECT COUNT(1) FROM billing_events WHERE event_type = ?`, billingeventdomain.EventContractCreated))

	found, err := svc.GetByRequest(ctx, 4100)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
}
