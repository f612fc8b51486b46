package billingevent

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/billingevent/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Outbox struct {
	genID *snowflake.Node
	clock clock.Clock
}

func NewOutbox(genID *snowflake.Node, c clock.Clock) domain.Emitter {
	return &Outbox{genID: genID, clock: c}
}

// Emit inserts the event unless another row already holds dedupeKey.
func (o *Outbox) Emit(ctx context.Context, tx *gorm.DB, eventType string, aggregateID snowflake.ID, dedupeKey string, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	event := &domain.BillingEvent{
		ID:          o.genID.Generate(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     datatypes.JSONMap(payload),
		CreatedAt:   o.clock.Now(),
	}
	if key := strings.TrimSpace(dedupeKey); key != "" {
		event.DedupeKey = &key
	}

	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event).Error
}
