package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/jmoiron/sqlx"

	"orders/internal/domain/bookings"
)

const bookingColumns = `booking_id, user_id, menu_id, status, created_at, updated_at`

type BookingsRepo struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
}

func NewBookingsRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter) *BookingsRepo {
	return &BookingsRepo{
		db:     db,
		getter: getter,
	}
}

func (r *BookingsRepo) Create(ctx context.Context, b bookings.Booking) (bookings.Booking, error) {
	var created bookings.Booking
	err := sqlx.GetContext(ctx, r.getter.DefaultTrOrDB(ctx, r.db), &created, `
		INSERT INTO bookings (user_id, menu_id, status)
		VALUES ($1, $2, $3)
		RETURNING `+bookingColumns,
		b.UserID, b.MenuID, b.Status,
	)
	if err != nil {
		return bookings.Booking{}, fmt.Errorf("failed to insert booking: %w", mapError(err))
	}

	return created, nil
}

func (r *BookingsRepo) GetByID(ctx context.Context, id int64) (bookings.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1`, id)
}

// GetByIDForUpdate locks the row until the surrounding transaction ends.
func (r *BookingsRepo) GetByIDForUpdate(ctx context.Context, id int64) (bookings.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1 FOR UPDATE`, id)
}

func (r *BookingsRepo) get(ctx context.Context, query string, id int64) (bookings.Booking, error) {
	var b bookings.Booking
	err := sqlx.GetContext(ctx, r.getter.DefaultTrOrDB(ctx, r.db), &b, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return bookings.Booking{}, bookings.ErrBookingNotFound
	}
	if err != nil {
		return bookings.Booking{}, fmt.Errorf("failed to select booking %d: %w", id, err)
	}

	return b, nil
}

// List returns bookings newest first. The result is never nil.
func (r *BookingsRepo) List(ctx context.Context, filter bookings.Filter) ([]bookings.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	var args []any
	if filter.UserID != nil {
		query += ` WHERE user_id = $1`
		args = append(args, *filter.UserID)
	}
	query += ` ORDER BY created_at DESC, booking_id DESC`

	result := []bookings.Booking{}
	if err := sqlx.SelectContext(ctx, r.getter.DefaultTrOrDB(ctx, r.db), &result, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select bookings: %w", err)
	}

	return result, nil
}

// Update merges the supplied fields of patch into the booking.
func (r *BookingsRepo) Update(ctx context.Context, id int64, patch bookings.Patch) (bookings.Booking, error) {
	if patch.IsEmpty() {
		return bookings.Booking{}, bookings.ErrNothingToUpdate
	}

	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}

	var updated bookings.Booking
	err := sqlx.GetContext(ctx, r.getter.DefaultTrOrDB(ctx, r.db), &updated, `
		UPDATE bookings
		SET menu_id = COALESCE($2, menu_id),
		    status = COALESCE($3, status),
		    updated_at = NOW()
		WHERE booking_id = $1
		RETURNING `+bookingColumns,
		id, patch.MenuID, status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return bookings.Booking{}, bookings.ErrBookingNotFound
	}
	if err != nil {
		return bookings.Booking{}, fmt.Errorf("failed to update booking %d: %w", id, mapError(err))
	}

	return updated, nil
}

func (r *BookingsRepo) UpdateStatus(ctx context.Context, id int64, status bookings.Status) (bookings.Booking, error) {
	return r.Update(ctx, id, bookings.Patch{Status: &status})
}

func (r *BookingsRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, `DELETE FROM bookings WHERE booking_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking %d: %w", id, mapError(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return bookings.ErrBookingNotFound
	}

	return nil
}
