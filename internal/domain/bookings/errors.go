package bookings

import "orders/internal/domain"

var (
	ErrBookingNotFound   = domain.NewError(domain.ErrNotFound, "order not found")
	ErrMissingFields     = domain.NewError(domain.ErrBadRequest, "missing required fields")
	ErrNothingToUpdate   = domain.NewError(domain.ErrBadRequest, "no fields to update")
	ErrInvalidStatus     = domain.NewError(domain.ErrBadRequest, "invalid status value")
	ErrInvalidTransition = domain.NewError(domain.ErrConflict, "status transition not allowed")
	ErrAlreadyCancelled  = domain.NewError(domain.ErrConflict, "order is already cancelled")
	ErrTooLateToOrder    = domain.NewError(domain.ErrBadRequest, "orders must be placed at least 2 hours before meal time")
	ErrTooLateToCancel   = domain.NewError(domain.ErrBadRequest, "orders can only be cancelled at least 2 hours before meal time")
)
