package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListByContext(ctx context.Context, db *gorm.DB, contextName string) ([]Status, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Status, error)
}
