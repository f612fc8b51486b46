package notification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/netbill/internal/config"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	"github.com/smallbiznis/netbill/internal/invoice/format"
	"github.com/smallbiznis/netbill/internal/invoice/render"
	"github.com/smallbiznis/netbill/internal/observability/metrics"
	"github.com/smallbiznis/netbill/internal/providers/email"
	"github.com/smallbiznis/netbill/internal/providers/sms"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Email    email.Provider
	SMS      sms.Provider
	Renderer render.Renderer
	Billing  *config.BillingConfigHolder `optional:"true"`
	Metrics  *metrics.Metrics            `optional:"true"`
}

// Dispatcher sends invoice notices on a background goroutine per call,
// bounded by the configured notifier timeout.
type Dispatcher struct {
	log      *zap.Logger
	email    email.Provider
	sms      sms.Provider
	renderer render.Renderer
	billing  *config.BillingConfigHolder
	metrics  *metrics.Metrics

	// mu orders wg.Add in Notify against wg.Wait in Close.
	mu      sync.RWMutex
	wg      sync.WaitGroup
	closed  bool
	entropy *ulid.MonotonicEntropy
	idMu    sync.Mutex
}

func NewDispatcher(p Params) *Dispatcher {
	return &Dispatcher{
		log:      p.Log.Named("notification.dispatcher"),
		email:    p.Email,
		sms:      p.SMS,
		renderer: p.Renderer,
		billing:  p.Billing,
		metrics:  p.Metrics,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// Notify returns once the send is scheduled. The delivery outcome is
// logged and counted, never returned.
func (d *Dispatcher) Notify(ctx context.Context, customer customerdomain.Customer, invoice invoicedomain.Invoice) error {
	channel := customer.PreferredNotification
	if channel == "" {
		channel = ChannelEmail
	}
	if channel != ChannelEmail && channel != ChannelSMS {
		return fmt.Errorf("%w: %s", ErrUnsupportedChannel, channel)
	}

	dispatchID := d.newID()
	timeout := d.timeout()
	// Detached from ctx so a finished billing run does not cancel delivery.
	sendCtx := context.WithoutCancel(ctx)

	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrClosed
	}
	d.wg.Add(1)
	d.mu.RUnlock()

	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(sendCtx, timeout)
		defer cancel()

		log := d.log.With(
			zap.String("dispatch_id", dispatchID),
			zap.String("channel", channel),
			zap.String("customer_id", customer.ID.String()),
			zap.String("invoice_id", invoice.ID.String()),
		)

		err := d.send(ctx, channel, customer, invoice)
		status := StatusSent
		switch {
		case err == nil:
			log.Info("notification sent")
		case errors.Is(err, context.DeadlineExceeded):
			status = StatusTimeout
			log.Warn("notification timed out", zap.Duration("timeout", timeout))
		default:
			status = StatusFailed
			log.Warn("notification failed", zap.Error(err))
		}
		if d.metrics != nil {
			d.metrics.RecordNotificationDispatched(ctx, channel, status)
		}
	}()
	return nil
}

// Close stops accepting notifications and waits for in-flight sends.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) send(ctx context.Context, channel string, customer customerdomain.Customer, invoice invoicedomain.Invoice) error {
	input := render.NoticeInput{
		CustomerName: customer.Name,
		Reference:    format.Reference(invoice.IssueDate, int64(invoice.ID)),
		Description:  invoice.Description,
		Amount:       invoice.Amount,
		Balance:      customer.Balance,
		DueDate:      invoice.DueDate,
	}

	if channel == ChannelSMS {
		text, err := d.renderer.RenderText(input)
		if err != nil {
			return err
		}
		return d.sms.Send(ctx, customer.Phone, text)
	}

	body, err := d.renderer.RenderHTML(input)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Invoice %s", input.Reference)
	return d.email.Send(ctx, []string{customer.Email}, subject, body)
}

func (d *Dispatcher) newID() string {
	d.idMu.Lock()
	defer d.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), d.entropy).String()
}

func (d *Dispatcher) timeout() time.Duration {
	if d.billing == nil {
		return config.DefaultBillingConfig().NotifierTimeout
	}
	return d.billing.Get().NotifierTimeout
}
