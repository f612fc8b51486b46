package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EventContractCreated    = "contract.created"
	EventContractTerminated = "contract.terminated"
	EventInvoiceCreated     = "invoice.created"
	EventInvoicePaid        = "invoice.paid"
	EventInvoiceOverdue     = "invoice.overdue"
	EventPaymentApplied     = "payment.applied"
)

// BillingEvent captures outbox events for billing workflows.
type BillingEvent struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	EventType   string            `gorm:"type:text;not null"`
	AggregateID snowflake.ID      `gorm:"not null"`
	Payload     datatypes.JSONMap `gorm:"type:jsonb;not null"`
	DedupeKey   *string           `gorm:"type:text;uniqueIndex"`
	Published   bool              `gorm:"not null;default:false"`
	PublishedAt *time.Time        `gorm:""`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BillingEvent) TableName() string { return "billing_events" }

// Emitter writes events on the caller's transaction so they commit with the
// state change they describe.
type Emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, eventType string, aggregateID snowflake.ID, dedupeKey string, payload map[string]any) error
}

// Handler receives relayed events. Returning an error leaves the event unpublished.
type Handler func(ctx context.Context, event BillingEvent) error
