package billingevent

import (
	"context"
	"errors"

	"github.com/smallbiznis/netbill/internal/billingevent/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const relayBatchSize = 100

// Relay drains unpublished outbox rows in creation order.
type Relay struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	handler domain.Handler
}

func NewRelay(db *gorm.DB, log *zap.Logger, c clock.Clock) *Relay {
	r := &Relay{
		db:    db,
		log:   log.Named("billing.events"),
		clock: c,
	}
	r.handler = r.logEvent
	return r
}

// WithHandler replaces the default log sink.
func (r *Relay) WithHandler(h domain.Handler) *Relay {
	if h != nil {
		r.handler = h
	}
	return r
}

// ProcessPending publishes one batch and returns how many rows were marked.
func (r *Relay) ProcessPending(ctx context.Context) (int, error) {
	var events []domain.BillingEvent
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, event_type, aggregate_id, payload, dedupe_key, published, published_at, created_at
		 FROM billing_events
		 WHERE published = false
		 ORDER BY created_at ASC, id ASC
		 LIMIT ?`,
		relayBatchSize,
	).Scan(&events).Error
	if err != nil {
		return 0, err
	}

	published := 0
	var errs []error
	for _, event := range events {
		if err := r.handler(ctx, event); err != nil {
			r.log.Error("failed to relay billing event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
				zap.String("event_id", event.ID.String()),
			)
			errs = append(errs, err)
			continue
		}
		if err := r.markPublished(ctx, event); err != nil {
			errs = append(errs, err)
			continue
		}
		published++
	}
	return published, errors.Join(errs...)
}

func (r *Relay) markPublished(ctx context.Context, event domain.BillingEvent) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE billing_events SET published = true, published_at = ? WHERE id = ? AND published = false`,
		r.clock.Now(),
		event.ID,
	).Error
}

func (r *Relay) logEvent(ctx context.Context, event domain.BillingEvent) error {
	r.log.Info("billing event",
		zap.String("event_type", event.EventType),
		zap.String("event_id", event.ID.String()),
		zap.String("aggregate_id", event.AggregateID.String()),
		zap.Any("payload", map[string]any(event.Payload)),
	)
	return nil
}
