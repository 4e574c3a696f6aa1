package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"orders/internal/entities"
)

// EventsRepository is the append-only log of every published booking event.
type EventsRepository struct {
	db *sqlx.DB
}

func NewEventsRepo(db *sqlx.DB) *EventsRepository {
	return &EventsRepository{db: db}
}

// SaveEvent stores the event once; redelivered events are ignored.
func (r *EventsRepository) SaveEvent(ctx context.Context, event entities.DatalakeEvent) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO events (event_id, published_at, event_name, event_payload)
		VALUES (:event_id, :published_at, :event_name, :event_payload)
		ON CONFLICT DO NOTHING
	`, event)
	if err != nil {
		return fmt.Errorf("failed to save event %s: %w", event.EventName, err)
	}

	return nil
}

func (r *EventsRepository) ListByName(ctx context.Context, eventName string) ([]entities.DatalakeEvent, error) {
	events := []entities.DatalakeEvent{}
	err := r.db.SelectContext(ctx, &events, `
		SELECT event_id, published_at, event_name, event_payload
		FROM events
		WHERE event_name = $1
		ORDER BY published_at
	`, eventName)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}

	return events, nil
}
