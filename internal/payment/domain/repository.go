package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	StampApplied(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error
	SumAll(ctx context.Context, db *gorm.DB) (int64, error)
}
