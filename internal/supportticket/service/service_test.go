package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/clock"
	customerrepo "github.com/smallbiznis/netbill/internal/customer/repository"
	customerservice "github.com/smallbiznis/netbill/internal/customer/service"
	statusrepo "github.com/smallbiznis/netbill/internal/status/repository"
	statusservice "github.com/smallbiznis/netbill/internal/status/service"
	"github.com/smallbiznis/netbill/internal/supportticket/domain"
	"github.com/smallbiznis/netbill/internal/supportticket/repository"
	"github.com/smallbiznis/netbill/internal/testutil"
	"github.com/smallbiznis/netbill/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	statuses := statusservice.New(statusservice.Params{DB: db, Log: log, Repo: statusrepo.Provide()})
	customers := customerservice.New(customerservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Repo: customerrepo.Provide(), Statuses: statuses,
	})
	return New(Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Clock:     fake,
		Repo:      repository.Provide(),
		Customers: customers,
		Statuses:  statuses,
	}), db
}

func TestTicketLifecycle(t *testing.T) {
	svc, db := newTestService(t)
	testutil.InsertCustomer(t, db, 1, 0, "sms")
	ctx := context.Background()

	ticket, err := svc.Create(ctx, domain.CreateTicketRequest{CustomerID: 1, Subject: "No link light"})
	require.NoError(t, err)
	assert.EqualValues(t, testutil.StatusTicketOpen, ticket.StatusID)

	require.NoError(t, svc.AssignTechnician(ctx, ticket.ID, "Olena"))
	got, err := svc.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.EqualValues(t, testutil.StatusTicketInProgress, got.StatusID)
	require.NotNil(t, got.Technician)
	assert.Equal(t, "Olena", *got.Technician)

	require.NoError(t, svc.MarkCompleted(ctx, ticket.ID))
	got, err = svc.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.EqualValues(t, testutil.StatusTicketCompleted, got.StatusID)
}

func TestCreateRejectsForeignStatus(t *testing.T) {
	svc, db := newTestService(t)
	testutil.InsertCustomer(t, db, 1, 0, "email")

	_, err := svc.Create(context.Background(), domain.CreateTicketRequest{
		CustomerID: 1,
		Subject:    "Slow",
		StatusID:   snowflake.ID(testutil.StatusRequestApproved),
	})
	verr, ok := validation.As(err)
	require.True(t, ok)
	assert.True(t, verr.Has("status", validation.CodeContextMismatch))
	assert.EqualValues(t, 0, testutil.Count(t, db, `SELECT COUNT(1) FROM support_tickets`))
}

func TestMissingTicket(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.MarkCompleted(ctx, 9), domain.ErrNotFound)
	assert.ErrorIs(t, svc.AssignTechnician(ctx, 9, "Ivan"), domain.ErrNotFound)
	assert.ErrorIs(t, svc.AssignTechnician(ctx, 9, " "), validation.ErrValidation)
}
