// Package outbox implements the transactional outbox: notifications are
// written in the same transaction as the state change they describe and a
// worker publishes them afterwards, in order.
package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a pending notification.
type Entry struct {
	ID            uuid.UUID
	Seq           int64 // assigned by the store; defines publish order
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte // JSON
	CreatedAt     time.Time
	ProcessedAt   *time.Time // nil until published
}

// IsPending reports whether the entry still needs publishing.
func (e *Entry) IsPending() bool {
	return e.ProcessedAt == nil
}

// NewEntry creates an entry with a fresh ID.
func NewEntry(aggregateType, aggregateID, eventType string, payload []byte, createdAt time.Time) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     createdAt,
	}
}
