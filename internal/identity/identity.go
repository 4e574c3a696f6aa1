package identity

import (
	"context"

	"orders/internal/domain"
)

var ErrMissingUser = domain.NewError(domain.ErrUnauthorized, "unauthorized")

type ctxKey struct{}

// WithUserID attaches a verified user id to ctx.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the verified user id of the caller.
func UserID(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(ctxKey{}).(int64)
	if !ok || userID <= 0 {
		return 0, ErrMissingUser
	}

	return userID, nil
}
