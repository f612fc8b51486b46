package testing

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	"gorm.io/gorm"
)

// TimeAccelerator rewrites stored dates so scheduler runs can be exercised
// without waiting for real calendar days.
type TimeAccelerator struct {
	db *gorm.DB
}

func NewTimeAccelerator(db *gorm.DB) *TimeAccelerator {
	return &TimeAccelerator{db: db}
}

// AgeInvoice moves an invoice's due date back by days.
func (ta *TimeAccelerator) AgeInvoice(ctx context.Context, invoiceID snowflake.ID, days int) error {
	var due time.Time
	if err := ta.db.WithContext(ctx).Raw(
		`SELECT due_date FROM invoices WHERE id = ?`,
		invoiceID,
	).Scan(&due).Error; err != nil {
		return err
	}
	return ta.db.WithContext(ctx).Exec(
		`UPDATE invoices SET due_date = ?, updated_at = ? WHERE id = ?`,
		due.AddDate(0, 0, -days).UTC(),
		time.Now().UTC(),
		invoiceID,
	).Error
}

// SetContractStart moves a contract's anniversary.
func (ta *TimeAccelerator) SetContractStart(ctx context.Context, contractID snowflake.ID, start time.Time) error {
	return ta.db.WithContext(ctx).Exec(
		`UPDATE contracts SET start_date = ? WHERE id = ?`,
		start.UTC(),
		contractID,
	).Error
}

// InvoiceInfo shows current invoice state for debugging.
type InvoiceInfo struct {
	ID      snowflake.ID
	Status  invoicedomain.InvoiceStatus
	Amount  int64
	DueDate time.Time
}

// OpenInvoices lists a customer's pending and overdue invoices in
// settlement order.
func (ta *TimeAccelerator) OpenInvoices(ctx context.Context, customerID snowflake.ID) ([]InvoiceInfo, error) {
	var rows []InvoiceInfo
	err := ta.db.WithContext(ctx).Raw(
		`SELECT i.id, i.status, i.amount, i.due_date
		 FROM invoices i
		 JOIN contracts c ON c.id = i.contract_id
		 WHERE c.customer_id = ? AND i.status IN (?, ?)
		 ORDER BY i.due_date ASC, i.id ASC`,
		customerID,
		invoicedomain.InvoiceStatusPending,
		invoicedomain.InvoiceStatusOverdue,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// InvoicesFor lists every invoice of a contract ordered by due date.
func (ta *TimeAccelerator) InvoicesFor(ctx context.Context, contractID snowflake.ID) ([]InvoiceInfo, error) {
	var rows []InvoiceInfo
	err := ta.db.WithContext(ctx).Raw(
		`SELECT id, status, amount, due_date
		 FROM invoices
		 WHERE contract_id = ?
		 ORDER BY due_date ASC, id ASC`,
		contractID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
