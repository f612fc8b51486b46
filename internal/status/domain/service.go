package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// StatusesByContext returns an empty set for unknown contexts.
	StatusesByContext(ctx context.Context, contextName string) ([]Status, error)
	// Resolve is the only way to obtain a Status for a write.
	Resolve(ctx context.Context, contextName, label string) (Status, error)
	// Validate fails with a validation error when statusID is not part of expectedContext.
	Validate(ctx context.Context, statusID snowflake.ID, expectedContext string) error
}

var (
	ErrInvalidContext = errors.New("invalid_context")
	ErrNotFound       = errors.New("not_found")
)
