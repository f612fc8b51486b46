package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Draft struct {
	ContractID  snowflake.ID
	CustomerID  snowflake.ID
	Amount      int64
	IssueDate   time.Time
	DueDate     time.Time
	Description string
	// Source tags metrics and events, e.g. approval or billing_cycle.
	Source string
}

const (
	SourceApproval     = "approval"
	SourceBillingCycle = "billing_cycle"
)

type Service interface {
	// CreateTx inserts a pending invoice and its outbox event on tx.
	CreateTx(ctx context.Context, tx *gorm.DB, draft Draft) (Invoice, error)
	GetByID(ctx context.Context, id snowflake.ID) (Invoice, error)
	// MarkPaid returns false when the invoice was already paid.
	MarkPaid(ctx context.Context, id snowflake.ID) (bool, error)
	// CheckOverdue runs the overdue sweep and returns the number of rows moved.
	CheckOverdue(ctx context.Context) (int64, error)
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
	ErrInvalidAmount = errors.New("invalid_amount")
)
