package clients_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orders/internal/domain/menus"
	"orders/internal/infrastructure/clients"
	"orders/internal/testinfra"
)

type countingCollection struct {
	calls atomic.Int32
	slots []menus.Slot
	err   error
}

func (c *countingCollection) All(ctx context.Context) ([]menus.Slot, error) {
	c.calls.Add(1)
	return c.slots, c.err
}

func TestCachedMenuLookup(t *testing.T) {
	rdb := testinfra.Redis(t)
	ctx := context.Background()
	require.NoError(t, rdb.FlushDB(ctx).Err())

	source := &countingCollection{slots: []menus.Slot{
		{MenuID: 7, DishName: "Pasta", MenuDate: "2026-02-01", StartTime: "12:00:00"},
	}}
	cache := clients.NewCachedMenuLookup(source, rdb, time.Minute)

	slot, err := cache.Lookup(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Pasta", slot.DishName)

	slot, err = cache.Lookup(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Pasta", slot.DishName)
	assert.Equal(t, int32(1), source.calls.Load(), "second lookup should be served from redis")

	_, err = cache.Lookup(ctx, 99)
	assert.ErrorIs(t, err, menus.ErrSlotNotFound)
}

func TestCachedMenuLookup_SourceFailureIsNotCached(t *testing.T) {
	rdb := testinfra.Redis(t)
	ctx := context.Background()
	require.NoError(t, rdb.FlushDB(ctx).Err())

	source := &countingCollection{err: errors.Join(menus.ErrLookupFailed, errors.New("boom"))}
	cache := clients.NewCachedMenuLookup(source, rdb, time.Minute)

	_, err := cache.Lookup(ctx, 7)
	assert.ErrorIs(t, err, menus.ErrLookupFailed)

	_, err = cache.Lookup(ctx, 7)
	assert.ErrorIs(t, err, menus.ErrLookupFailed)
	assert.Equal(t, int32(2), source.calls.Load())
}

func TestCachedMenuLookup_RedisDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	source := &countingCollection{slots: []menus.Slot{{MenuID: 7, DishName: "Pasta"}}}
	cache := clients.NewCachedMenuLookup(source, rdb, time.Minute)

	slot, err := cache.Lookup(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Pasta", slot.DishName)
}
