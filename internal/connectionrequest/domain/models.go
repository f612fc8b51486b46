package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ConnectionRequest moves New -> Approved or New -> Denied. Completed is
// the legacy batch path.
type ConnectionRequest struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	AddressID  snowflake.ID `gorm:"not null" json:"address_id"`
	TariffID   snowflake.ID `gorm:"not null" json:"tariff_id"`
	StatusID   snowflake.ID `gorm:"not null" json:"status_id"`
	Notes      *string      `json:"notes,omitempty"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null" json:"updated_at"`
}

func (ConnectionRequest) TableName() string { return "connection_requests" }
