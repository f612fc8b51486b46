package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, ticket *SupportTicket) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*SupportTicket, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id, statusID snowflake.ID, now time.Time) (int64, error)
	Assign(ctx context.Context, db *gorm.DB, id, statusID snowflake.ID, technician string, now time.Time) (int64, error)
}
