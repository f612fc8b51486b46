package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateTicketRequest struct {
	CustomerID snowflake.ID `json:"customer_id" validate:"required"`
	Subject    string       `json:"subject" validate:"required,max=255"`
	StatusID   snowflake.ID `json:"status_id"`
}

type Service interface {
	Create(ctx context.Context, req CreateTicketRequest) (SupportTicket, error)
	Get(ctx context.Context, id snowflake.ID) (SupportTicket, error)
	// AssignTechnician moves the ticket to In Progress.
	AssignTechnician(ctx context.Context, id snowflake.ID, technician string) error
	MarkCompleted(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
)
