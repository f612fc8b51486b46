package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/smallbiznis/netbill/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestMarkOverdueOnlyTouchesPendingPastDue(t *testing.T) {
	db, mock := newMockDB(t)
	today := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	now := today.Add(3 * time.Hour)

	mock.ExpectExec(`UPDATE invoices SET status = \$1, updated_at = \$2\s+WHERE status = \$3 AND due_date < \$4`).
		WithArgs(domain.InvoiceStatusOverdue, now, domain.InvoiceStatusPending, today).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := Provide().MarkOverdue(context.Background(), db, today, now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaidSkipsPaidRows(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2024, 4, 10, 1, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE invoices SET status = \$1, paid_at = \$2, updated_at = \$3\s+WHERE id = \$4 AND status IN \(\$5, \$6\)`).
		WithArgs(domain.InvoiceStatusPaid, now, now, int64(9), domain.InvoiceStatusPending, domain.InvoiceStatusOverdue).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := Provide().MarkPaid(context.Background(), db, 9, now)
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOpenByCustomerLocksInDueOrder(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "contract_id", "amount", "status"}).
		AddRow(1, 5, 300, "overdue").
		AddRow(2, 5, 300, "pending")
	mock.ExpectQuery(`ORDER BY due_date ASC, id ASC\s+FOR UPDATE`).
		WithArgs(int64(77), domain.InvoiceStatusPending, domain.InvoiceStatusOverdue).
		WillReturnRows(rows)

	items, err := Provide().ListOpenByCustomer(context.Background(), db, 77)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.InvoiceStatusOverdue, items[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
