package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	// Assign runs on the caller's transaction; any error means the caller
	// should roll back every assignment made so far.
	Assign(ctx context.Context, tx *gorm.DB, contractID snowflake.ID, equipmentIDs []snowflake.ID) ([]ContractEquipment, error)
	ListByContract(ctx context.Context, contractID snowflake.ID) ([]ContractEquipment, error)
}

var (
	ErrNotFound   = errors.New("equipment_not_found")
	ErrOutOfStock = errors.New("equipment_out_of_stock")
)
