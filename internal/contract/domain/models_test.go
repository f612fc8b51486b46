package domain

import (
	"testing"
	"time"

	"github.com/smallbiznis/netbill/internal/validation"
	"github.com/stretchr/testify/assert"
)

func TestIsActive(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, Contract{}.IsActive(now))
	assert.True(t, Contract{EndDate: &tomorrow}.IsActive(now))
	assert.False(t, Contract{EndDate: &today}.IsActive(now))
}

func TestValidateDates(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	same := start
	later := start.AddDate(0, 1, 0)

	assert.NoError(t, ValidateDates(start, nil))
	assert.NoError(t, ValidateDates(start, &later))

	err := ValidateDates(start, &same)
	verr, ok := validation.As(err)
	assert.True(t, ok)
	assert.True(t, verr.Has("end_date", validation.CodeDateOrder))

	assert.ErrorIs(t, ValidateDates(time.Time{}, nil), validation.ErrValidation)
}
