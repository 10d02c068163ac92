package purchase

import (
	"context"
	"time"

	"retailcore/internal/core/id"
)

// AggregateType identifies purchase entries in the outbox and audit trail.
const AggregateType = "PurchaseEntry"

// Event types raised by the aggregate.
const (
	EventCreated         = "PurchaseEntryCreated"
	EventConfirmed       = "PurchaseEntryConfirmed"
	EventLinesUpdated    = "PurchaseLinesUpdated"
	EventReceived        = "PurchaseReceived"
	EventPaymentRecorded = "PurchasePaymentRecorded"
	EventCancelled       = "PurchaseEntryCancelled"
)

// Event is a domain event raised by a mutating operation. Events are
// published through the transactional outbox in the same transaction as
// the write that produced them.
type Event struct {
	Type       string         `json:"type"`
	EntryID    id.ID          `json:"entryId"`
	TenantID   id.ID          `json:"tenantId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// EventPublisher delivers domain events. The postgres outbox adapter
// implements it; Publish must be called inside the write transaction.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}
