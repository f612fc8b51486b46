package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type SupportTicket struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	Subject    string       `gorm:"not null" json:"subject"`
	StatusID   snowflake.ID `gorm:"not null" json:"status_id"`
	Technician *string      `json:"technician,omitempty"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null" json:"updated_at"`
}

func (SupportTicket) TableName() string { return "support_tickets" }
