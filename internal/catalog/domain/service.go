package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Catalog is read-only for billing.
type Catalog interface {
	GetTariff(ctx context.Context, id snowflake.ID) (Tariff, error)
	// FirstService returns the lowest-positioned service of the tariff.
	FirstService(ctx context.Context, tariffID snowflake.ID) (Service, error)
	GetAddress(ctx context.Context, id snowflake.ID) (Address, error)
}

var (
	ErrTariffNotFound  = errors.New("tariff_not_found")
	ErrServiceNotFound = errors.New("service_not_found")
	ErrAddressNotFound = errors.New("address_not_found")
)
