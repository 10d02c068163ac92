package postgres

import (
	"context"

	"retailcore/internal/domain/purchase"
)

// Compile-time check.
var _ purchase.EventPublisher = (*PurchaseEventOutbox)(nil)

// PurchaseEventOutbox adapts the transactional outbox to the purchase
// domain's EventPublisher. Events are written in the same transaction as
// the aggregate change, so consumers never see an event for a state that
// was rolled back.
type PurchaseEventOutbox struct {
	outbox *OutboxPublisher
}

// NewPurchaseEventOutbox creates the adapter.
func NewPurchaseEventOutbox(outbox *OutboxPublisher) *PurchaseEventOutbox {
	return &PurchaseEventOutbox{outbox: outbox}
}

// Publish writes the domain events to the outbox table.
func (p *PurchaseEventOutbox) Publish(ctx context.Context, events ...purchase.Event) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]DomainEvent, 0, len(events))
	for _, e := range events {
		msgs = append(msgs, DomainEvent{
			CompanyID:     e.TenantID,
			AggregateType: purchase.AggregateType,
			AggregateID:   e.EntryID,
			EventType:     e.Type,
			OccurredAt:    e.OccurredAt,
			Payload:       e.Payload,
		})
	}

	return p.outbox.PublishBatch(ctx, msgs)
}
