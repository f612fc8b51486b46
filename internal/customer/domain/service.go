package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateCustomerRequest struct {
	Name                  string       `json:"name" validate:"required,max=255"`
	Email                 string       `json:"email" validate:"required,email"`
	Phone                 string       `json:"phone" validate:"required,ua_phone"`
	PreferredNotification string       `json:"preferred_notification" validate:"omitempty,oneof=email sms"`
	StatusID              snowflake.ID `json:"status_id"`
}

type AddAddressRequest struct {
	CustomerID snowflake.ID `json:"customer_id" validate:"required"`
	Line       string       `json:"line" validate:"required"`
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	AddAddress(context.Context, AddAddressRequest) (Address, error)
	GetByID(ctx context.Context, id snowflake.ID) (Customer, error)
	// UpdateStatus rejects statuses outside the Customer context.
	UpdateStatus(ctx context.Context, id, statusID snowflake.ID) error
	// TotalMonthlyPayment sums tariff prices over the customer's active contracts.
	TotalMonthlyPayment(ctx context.Context, id snowflake.ID) (int64, error)
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
)
