package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Equipment struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Name          string       `gorm:"not null" json:"name"`
	StockQuantity int          `gorm:"not null" json:"stock_quantity"`
}

func (Equipment) TableName() string { return "equipment" }

type ContractEquipment struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	ContractID  snowflake.ID `gorm:"not null" json:"contract_id"`
	EquipmentID snowflake.ID `gorm:"not null" json:"equipment_id"`
	AssignedAt  time.Time    `gorm:"not null" json:"assigned_at"`
}

func (ContractEquipment) TableName() string { return "contract_equipment" }
