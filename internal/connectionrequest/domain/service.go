package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	CustomerID snowflake.ID `json:"customer_id" validate:"required"`
	AddressID  snowflake.ID `json:"address_id" validate:"required"`
	TariffID   snowflake.ID `json:"tariff_id" validate:"required"`
	StatusID   snowflake.ID `json:"status_id"`
	Notes      string       `json:"notes" validate:"max=2000"`
}

type ApproveRequest struct {
	StartDate    *time.Time     `json:"start_date"`
	EndDate      *time.Time     `json:"end_date"`
	EquipmentIDs []snowflake.ID `json:"equipment_ids"`
}

// ApproveResult always carries the contract once it is committed. Partial
// is set when the equipment and invoice step failed afterwards; InvoiceID
// is zero in that case.
type ApproveResult struct {
	ContractID snowflake.ID
	InvoiceID  snowflake.ID
	Partial    error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (ConnectionRequest, error)
	Get(ctx context.Context, id snowflake.ID) (ConnectionRequest, error)
	Approve(ctx context.Context, id snowflake.ID, req ApproveRequest) (ApproveResult, error)
	Decline(ctx context.Context, id snowflake.ID) error
	Complete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
	ErrConflict  = errors.New("conflict")
)
