package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, request *ConnectionRequest) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ConnectionRequest, error)
	// UpdateStatus touches status_id and updated_at only.
	UpdateStatus(ctx context.Context, db *gorm.DB, id, statusID snowflake.ID, now time.Time) (int64, error)
}
