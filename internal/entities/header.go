package entities

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

// NewEventHeader builds a header for an event published at publishedAt.
// An empty idempotencyKey gets a fresh one.
func NewEventHeader(idempotencyKey string, publishedAt time.Time) EventHeader {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    publishedAt.UTC(),
		IdempotencyKey: idempotencyKey,
	}
}
