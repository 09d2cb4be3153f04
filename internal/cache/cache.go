package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"grubmarket/internal/models"
)

const (
	// order:{order_id} -> JSON order row (no items)
	keyOrder = "order:%d"

	orderTTL = 5 * time.Minute
)

// OrderCache is a best-effort Redis cache for order rows. Misses and Redis
// failures both read as a miss and fall through to the database; every
// mutation path rewrites the entry, so entries only go stale if someone
// bypasses the service.
type OrderCache struct {
	rdb *redis.Client
}

// NewClient creates a Redis client for the given address.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewOrderCache creates an order cache over the given client.
func NewOrderCache(rdb *redis.Client) *OrderCache {
	return &OrderCache{rdb: rdb}
}

// Get returns the cached order, or ok=false on miss or error.
func (c *OrderCache) Get(ctx context.Context, orderID int64) (*models.Order, bool) {
	body, err := c.rdb.Get(ctx, fmt.Sprintf(keyOrder, orderID)).Bytes()
	if err != nil {
		// A broken cache reads the same as a miss.
		return nil, false
	}
	var o models.Order
	if err := json.Unmarshal(body, &o); err != nil {
		return nil, false
	}
	return &o, true
}

// Set stores the order row with a short TTL. Errors are ignored; the database
// stays the source of truth.
func (c *OrderCache) Set(ctx context.Context, o *models.Order) {
	entry := *o
	entry.Items = nil
	body, err := json.Marshal(&entry)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, fmt.Sprintf(keyOrder, o.ID), body, orderTTL).Err()
}

// Ping checks the Redis connection.
func (c *OrderCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
