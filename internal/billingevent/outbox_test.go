package billingevent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/billingevent/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEmitDeduplicatesByKey(t *testing.T) {
	db := testutil.OpenDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	outbox := NewOutbox(node, fake)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, outbox.Emit(ctx, db, domain.EventInvoiceCreated, 77, "invoice.created:77", map[string]any{"amount": 300}))
	}
	require.NoError(t, outbox.Emit(ctx, db, domain.EventInvoiceOverdue, 0, "", nil))

	assert.EqualValues(t, 1, testutil.Count(t, db, `SELECT COUNT(1) FROM billing_events WHERE event_type = ?`, domain.EventInvoiceCreated))
	assert.EqualValues(t, 2, testutil.Count(t, db, `SELECT COUNT(1) FROM billing_events`))
}

func TestRelayMarksPublishedAndKeepsFailures(t *testing.T) {
	db := testutil.OpenDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	outbox := NewOutbox(node, fake)
	ctx := context.Background()

	require.NoError(t, outbox.Emit(ctx, db, domain.EventContractCreated, 1, "contract.created:1", nil))
	require.NoError(t, outbox.Emit(ctx, db, domain.EventPaymentApplied, 2, "payment.applied:2", nil))

	var seen []string
	relay := NewRelay(db, zap.NewNop(), fake).WithHandler(func(ctx context.Context, event domain.BillingEvent) error {
		seen = append(seen, event.EventType)
		if event.EventType == domain.EventPaymentApplied {
			return errors.New("sink down")
		}
		return nil
	})

	n, err := relay.ProcessPending(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.ElementsMatch(t, []string{domain.EventContractCreated, domain.EventPaymentApplied}, seen)
	assert.EqualValues(t, 1, testutil.Count(t, db, `SELECT COUNT(1) FROM billing_events WHERE published = false`))
}
