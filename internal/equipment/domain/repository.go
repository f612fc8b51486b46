package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Equipment, error)
	// DecrementStock only succeeds while stock_quantity is positive.
	DecrementStock(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	InsertAssignment(ctx context.Context, db *gorm.DB, assignment *ContractEquipment) error
	ListByContract(ctx context.Context, db *gorm.DB, contractID snowflake.ID) ([]ContractEquipment, error)
}
