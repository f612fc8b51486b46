package notification

import (
	"context"
	"errors"

	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
)

//go:generate mockgen -source=notifier.go -destination=./mock/mock_notifier.go -package=mock

// Notifier tells a customer about an invoice. Delivery is best effort and
// must not block the caller.
type Notifier interface {
	Notify(ctx context.Context, customer customerdomain.Customer, invoice invoicedomain.Invoice) error
}

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusTimeout = "timeout"
)

var (
	ErrClosed             = errors.New("notifier_closed")
	ErrUnsupportedChannel = errors.New("unsupported_channel")
)
