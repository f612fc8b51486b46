package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/validation"
)

// Contract is created once per approved connection request. The only
// mutation after creation is setting EndDate on termination.
type Contract struct {
	ID                  snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID          snowflake.ID  `gorm:"not null" json:"customer_id"`
	ConnectionRequestID snowflake.ID  `gorm:"not null;uniqueIndex" json:"connection_request_id"`
	AddressID           snowflake.ID  `gorm:"not null" json:"address_id"`
	ServiceID           snowflake.ID  `gorm:"not null" json:"service_id"`
	TariffID            *snowflake.ID `json:"tariff_id,omitempty"`
	StartDate           time.Time     `gorm:"type:date;not null" json:"start_date"`
	EndDate             *time.Time    `gorm:"type:date" json:"end_date,omitempty"`
	CreatedAt           time.Time     `gorm:"not null" json:"created_at"`
}

func (Contract) TableName() string { return "contracts" }

// IsActive is derived, never stored.
func (c Contract) IsActive(now time.Time) bool {
	return c.EndDate == nil || c.EndDate.After(now)
}

// ValidateDates enforces end > start when an end date is given.
func ValidateDates(start time.Time, end *time.Time) error {
	if start.IsZero() {
		return validation.New("start_date", validation.CodeRequired, "start_date is required")
	}
	if end != nil && !end.After(start) {
		return validation.New("end_date", validation.CodeDateOrder, "end_date must be after start_date")
	}
	return nil
}
