package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	NotifyEmail = "email"
	NotifySMS   = "sms"
)

// Customer balance is in minor units and only moves through payment
// application and invoice allocation.
type Customer struct {
	ID                    snowflake.ID `gorm:"primaryKey" json:"id"`
	Name                  string       `gorm:"not null" json:"name"`
	Email                 string       `gorm:"not null" json:"email"`
	Phone                 string       `gorm:"not null;uniqueIndex" json:"phone"`
	StatusID              snowflake.ID `gorm:"not null" json:"status_id"`
	Balance               int64        `gorm:"not null;default:0" json:"balance"`
	PreferredNotification string       `gorm:"not null" json:"preferred_notification"`
	CreatedAt             time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt             time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

type Address struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	Line       string       `gorm:"not null" json:"line"`
}

func (Address) TableName() string { return "addresses" }
