package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
)

// Payment records money received from a customer. Recording it does not
// touch the balance; ApplyToBalance does.
type Payment struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID  snowflake.ID `gorm:"not null;index" json:"customer_id"`
	Amount      int64        `gorm:"not null" json:"amount"`
	PaymentDate time.Time    `gorm:"not null" json:"payment_date"`
	Method      string       `gorm:"not null" json:"method"`
	AppliedAt   *time.Time   `json:"applied_at,omitempty"`
}

func (Payment) TableName() string { return "payments" }
