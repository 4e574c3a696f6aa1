package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func InitializeDBSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS bookings (
	booking_id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	menu_id BIGINT NOT NULL,
	status VARCHAR(32) NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	CONSTRAINT bookings_ids_positive CHECK (user_id > 0 AND menu_id > 0)
);

CREATE INDEX IF NOT EXISTS bookings_user_id_created_at_idx ON bookings (user_id, created_at DESC);`)
	if err != nil {
		return fmt.Errorf("failed to create bookings table: %w", err)
	}

	_, err = db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS events (
	event_id UUID PRIMARY KEY,
	published_at TIMESTAMP WITH TIME ZONE NOT NULL,
	event_name VARCHAR(255) NOT NULL,
	event_payload JSONB NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	return nil
}
