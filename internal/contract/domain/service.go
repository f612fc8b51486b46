package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Draft carries the fields copied from an approved connection request.
type Draft struct {
	CustomerID          snowflake.ID
	ConnectionRequestID snowflake.ID
	AddressID           snowflake.ID
	ServiceID           snowflake.ID
	TariffID            *snowflake.ID
	StartDate           time.Time
	EndDate             *time.Time
}

type Service interface {
	// CreateTx inserts the contract and its outbox event on tx.
	CreateTx(ctx context.Context, tx *gorm.DB, draft Draft) (Contract, error)
	// Terminate returns false without error when the contract already ended.
	Terminate(ctx context.Context, id snowflake.ID) (bool, error)
	Get(ctx context.Context, id snowflake.ID) (Contract, error)
	GetByRequest(ctx context.Context, requestID snowflake.ID) (*Contract, error)
	ListActive(ctx context.Context, now time.Time) ([]Contract, error)
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
	ErrConflict  = errors.New("contract_exists")
)
