package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a short-TTL read cache for availability lookups. Staleness is
// tolerable: reservation always re-checks the row under lock.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs Cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func availabilityKey(productID, officeID int64) string {
	return fmt.Sprintf("availability:%d:%d", productID, officeID)
}

// Get returns the cached availability, if present.
func (c *Cache) Get(ctx context.Context, productID, officeID int64) (Availability, bool) {
	if c == nil || c.client == nil {
		return Availability{}, false
	}
	payload, err := c.client.Get(ctx, availabilityKey(productID, officeID)).Bytes()
	if err != nil {
		return Availability{}, false
	}
	var av Availability
	if err := json.Unmarshal(payload, &av); err != nil {
		return Availability{}, false
	}
	return av, true
}

// Set stores the availability for the configured TTL.
func (c *Cache) Set(ctx context.Context, av Availability) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(av)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, availabilityKey(av.ProductID, av.OfficeID), payload, c.ttl).Err()
}

// Invalidate drops the cached entry after a ledger mutation.
func (c *Cache) Invalidate(ctx context.Context, productID, officeID int64) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, availabilityKey(productID, officeID)).Err()
}
