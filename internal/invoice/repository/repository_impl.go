package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const invoiceColumns = `id, contract_id, amount, issue_date, due_date, description, status, paid_at, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO invoices (`+invoiceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.ContractID,
		invoice.Amount,
		invoice.IssueDate,
		invoice.DueDate,
		invoice.Description,
		invoice.Status,
		invoice.PaidAt,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) FindByDueDate(ctx context.Context, db *gorm.DB, contractID snowflake.ID, due time.Time) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE contract_id = ? AND due_date = ?
		 ORDER BY id ASC
		 LIMIT 1`,
		contractID,
		due,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, paid_at = ?, updated_at = ?
		 WHERE id = ? AND status IN (?, ?)`,
		domain.InvoiceStatusPaid,
		now,
		now,
		id,
		domain.InvoiceStatusPending,
		domain.InvoiceStatusOverdue,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) MarkOverdue(ctx context.Context, db *gorm.DB, today, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, updated_at = ?
		 WHERE status = ? AND due_date < ?`,
		domain.InvoiceStatusOverdue,
		now,
		domain.InvoiceStatusPending,
		today,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) ListOpenByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]domain.Invoice, error) {
	var items []domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE contract_id IN (SELECT id FROM contracts WHERE customer_id = ?)
		   AND status IN (?, ?)
		 ORDER BY due_date ASC, id ASC
		 FOR UPDATE`,
		customerID,
		domain.InvoiceStatusPending,
		domain.InvoiceStatusOverdue,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

type statusTotal struct {
	Status domain.InvoiceStatus
	Total  int64
}

func (r *repo) SumByStatus(ctx context.Context, db *gorm.DB) (map[domain.InvoiceStatus]int64, error) {
	var rows []statusTotal
	err := db.WithContext(ctx).Raw(
		`SELECT status, COALESCE(SUM(amount), 0) AS total FROM invoices GROUP BY status`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.InvoiceStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}
