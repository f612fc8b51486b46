package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	// FindByDueDate returns nil when the contract has no invoice due that day.
	FindByDueDate(ctx context.Context, db *gorm.DB, contractID snowflake.ID, due time.Time) (*Invoice, error)
	// MarkPaid only moves pending or overdue rows.
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) (int64, error)
	// MarkOverdue flips every pending invoice due before today.
	MarkOverdue(ctx context.Context, db *gorm.DB, today, now time.Time) (int64, error)
	// ListOpenByCustomer orders by due_date then id so settlement is FIFO.
	ListOpenByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]Invoice, error)
	SumByStatus(ctx context.Context, db *gorm.DB) (map[InvoiceStatus]int64, error)
}
