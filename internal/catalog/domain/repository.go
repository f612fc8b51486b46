package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindTariff(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tariff, error)
	FirstService(ctx context.Context, db *gorm.DB, tariffID snowflake.ID) (*Service, error)
	FindAddress(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Address, error)
}
