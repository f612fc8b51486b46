package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	InsertAddress(ctx context.Context, db *gorm.DB, address *Address) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id, statusID snowflake.ID, now time.Time) (int64, error)
	Credit(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, now time.Time) (int64, error)
	// Debit only applies when the balance covers amount.
	Debit(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, now time.Time) (int64, error)
	ListIDsWithPositiveBalance(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error)
	SumActiveTariffs(ctx context.Context, db *gorm.DB, id snowflake.ID, today time.Time) (int64, error)
}
