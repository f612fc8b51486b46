// Package domain contains persistence models for invoicing.
package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice represents one billing period charge for a contract.
type Invoice struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	ContractID  snowflake.ID  `gorm:"not null;index" json:"contract_id"`
	Amount      int64         `gorm:"not null" json:"amount"`
	IssueDate   time.Time     `gorm:"type:date;not null" json:"issue_date"`
	DueDate     time.Time     `gorm:"type:date;not null" json:"due_date"`
	Description string        `gorm:"type:text;not null" json:"description"`
	Status      InvoiceStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	PaidAt      *time.Time    `json:"paid_at,omitempty"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// CanTransition reports whether from -> to is allowed. Paid is terminal.
func CanTransition(from, to InvoiceStatus) bool {
	switch from {
	case InvoiceStatusPending:
		return to == InvoiceStatusPaid || to == InvoiceStatusOverdue
	case InvoiceStatusOverdue:
		return to == InvoiceStatusPaid
	default:
		return false
	}
}

// Open reports whether the invoice still awaits payment.
func (s InvoiceStatus) Open() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusOverdue
}

// ApprovalDescription labels the first invoice issued on approval.
func ApprovalDescription(tariffName string) string {
	return fmt.Sprintf("Monthly fee for %s", tariffName)
}

// CycleDescription labels invoices issued by the daily billing run.
func CycleDescription(tariffName string, due time.Time) string {
	return fmt.Sprintf("Monthly fee for %s - %s", tariffName, due.Format(time.DateOnly))
}
