package validation

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Name    string     `json:"name" validate:"required"`
	Phone   string     `json:"phone" validate:"required,ua_phone"`
	Channel string     `json:"preferred_notification" validate:"oneof=email sms"`
	Amount  int64      `json:"amount" validate:"gt=0"`
	Start   time.Time  `json:"start_date"`
	End     *time.Time `json:"end_date" validate:"omitempty,gtfield=Start"`
}

func TestStructCollectsFieldErrors(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	err := Struct(signupForm{
		Phone:   "+38050123",
		Channel: "fax",
		Start:   start,
		End:     &end,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	verr, ok := As(err)
	require.True(t, ok)
	assert.True(t, verr.Has("name", CodeRequired))
	assert.True(t, verr.Has("phone", CodeInvalid))
	assert.True(t, verr.Has("preferred_notification", CodeInvalid))
	assert.True(t, verr.Has("amount", CodeOutOfRange))
	assert.True(t, verr.Has("end_date", CodeDateOrder))
}

func TestStructAcceptsValidInput(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	err := Struct(signupForm{
		Name:    "Olena",
		Phone:   "+380501234567",
		Channel: "sms",
		Amount:  100,
		Start:   start,
		End:     &end,
	})
	assert.NoError(t, err)
}

func TestIsPhone(t *testing.T) {
	assert.True(t, IsPhone("+380671112233"))
	assert.False(t, IsPhone("380671112233"))
	assert.False(t, IsPhone("+3806711122334"))
	assert.False(t, IsPhone("+48671112233"))
}

func TestErrorsWrapping(t *testing.T) {
	var collected Errors
	assert.NoError(t, collected.OrNil())

	wrapped := fmt.Errorf("approve: %w", New("status", CodeContextMismatch, "status belongs to Customer"))
	verr, ok := As(wrapped)
	require.True(t, ok)
	assert.True(t, verr.Has("status", CodeContextMismatch))
	assert.Contains(t, wrapped.Error(), "status belongs to Customer")
}
