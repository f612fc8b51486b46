package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type RecordPaymentRequest struct {
	CustomerID snowflake.ID `json:"customer_id" validate:"required"`
	Amount     int64        `json:"amount" validate:"gt=0"`
	Method     string       `json:"method" validate:"required,max=64"`
}

type Service interface {
	Record(ctx context.Context, req RecordPaymentRequest) (Payment, error)
	// ApplyToBalance credits the customer by the payment amount. It is not
	// idempotent: every call credits again.
	ApplyToBalance(ctx context.Context, paymentID snowflake.ID) error
	GetByID(ctx context.Context, id snowflake.ID) (Payment, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("not_found")
	ErrCustomerNotFound = errors.New("customer_not_found")
)
