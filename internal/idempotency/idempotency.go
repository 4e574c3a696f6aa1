package idempotency

import (
	"context"
)

const Header = "Idempotency-Key"

type ctxKey struct{}

func WithKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, key)
}

// GetKey returns the key the request was sent with, or an empty string.
// Event headers generate a fresh key when it is empty.
func GetKey(ctx context.Context) string {
	key, _ := ctx.Value(ctxKey{}).(string)
	return key
}
