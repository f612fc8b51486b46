package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, contract *Contract) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Contract, error)
	FindByRequestID(ctx context.Context, db *gorm.DB, requestID snowflake.ID) (*Contract, error)
	// Terminate sets end_date = today only while the contract is still open
	// past today and started before it.
	Terminate(ctx context.Context, db *gorm.DB, id snowflake.ID, today time.Time) (int64, error)
	ListActive(ctx context.Context, db *gorm.DB, today time.Time) ([]Contract, error)
}
