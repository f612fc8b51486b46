package domain

import "github.com/bwmarrin/snowflake"

// Tariff price is in minor units of Currency.
type Tariff struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	Name     string       `gorm:"not null" json:"name"`
	Price    int64        `gorm:"not null" json:"price"`
	Currency string       `gorm:"not null" json:"currency"`
}

func (Tariff) TableName() string { return "tariffs" }

type Service struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name string       `gorm:"not null" json:"name"`
}

func (Service) TableName() string { return "services" }

type Address struct {
	ID         snowflake.ID `json:"id"`
	CustomerID snowflake.ID `json:"customer_id"`
	Line       string       `json:"line"`
}

func (a Address) OwnedBy(customerID snowflake.ID) bool {
	return a.CustomerID == customerID
}
