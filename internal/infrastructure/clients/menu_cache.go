package clients

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/redis/go-redis/v9"

	"orders/internal/domain/menus"
)

const menuCacheKey = "orders:menus:all"

type MenuCollection interface {
	All(ctx context.Context) ([]menus.Slot, error)
}

// CachedMenuLookup serves lookups from a short-lived Redis copy of the menu
// collection. Redis failures fall through to the menu service.
type CachedMenuLookup struct {
	source MenuCollection
	rdb    redis.UniversalClient
	ttl    time.Duration
}

func NewCachedMenuLookup(source MenuCollection, rdb redis.UniversalClient, ttl time.Duration) *CachedMenuLookup {
	return &CachedMenuLookup{
		source: source,
		rdb:    rdb,
		ttl:    ttl,
	}
}

func (c *CachedMenuLookup) Lookup(ctx context.Context, menuID int64) (menus.Slot, error) {
	all, err := c.All(ctx)
	if err != nil {
		return menus.Slot{}, err
	}
	return FindSlot(all, menuID)
}

func (c *CachedMenuLookup) All(ctx context.Context) ([]menus.Slot, error) {
	cached, err := c.rdb.Get(ctx, menuCacheKey).Bytes()
	switch {
	case err == nil:
		var all []menus.Slot
		if err := json.Unmarshal(cached, &all); err == nil {
			return all, nil
		}
		log.FromContext(ctx).Warn("Dropping undecodable menu cache entry")
	case !errors.Is(err, redis.Nil):
		log.FromContext(ctx).WithField("error", err).Warn("Menu cache read failed")
	}

	all, err := c.source.All(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(all)
	if err != nil {
		return all, nil
	}
	if err := c.rdb.Set(ctx, menuCacheKey, payload, c.ttl).Err(); err != nil {
		log.FromContext(ctx).WithField("error", err).Warn("Menu cache write failed")
	}

	return all, nil
}
