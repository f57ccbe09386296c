package bookings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"transitly/internal/shared/constants"
	"transitly/pkg/logger"
)

// HoldCache mirrors live holds into Redis for fast lookups. It is
// strictly best-effort: the database row is the source of truth, and a
// cache miss means "unknown", never "released".
type HoldCache struct {
	client *redis.Client
	logger *logger.Logger
}

func NewHoldCache(client *redis.Client) *HoldCache {
	return &HoldCache{
		client: client,
		logger: logger.GetDefault(),
	}
}

// Put mirrors a hold, expiring alongside the hold itself.
func (c *HoldCache) Put(ctx context.Context, hold *SeatHold) {
	if c.client == nil {
		return
	}

	ttl := time.Until(hold.ExpiresAt)
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(hold)
	if err != nil {
		return
	}

	key := constants.HoldCacheKey(hold.ID.String())
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.ErrorWithContext(ctx, "Failed to cache hold", err, map[string]interface{}{
			"hold_id": hold.ID.String(),
		})
	}
}

// Get returns the mirrored hold, or nil on any miss or error.
func (c *HoldCache) Get(ctx context.Context, holdID string) *SeatHold {
	if c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, constants.HoldCacheKey(holdID)).Bytes()
	if err != nil {
		return nil
	}

	var hold SeatHold
	if err := json.Unmarshal(data, &hold); err != nil {
		return nil
	}
	return &hold
}

// Delete removes the mirror when a hold settles early.
func (c *HoldCache) Delete(ctx context.Context, holdID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, constants.HoldCacheKey(holdID)).Err(); err != nil {
		c.logger.ErrorWithContext(ctx, "Failed to evict hold cache entry", err, map[string]interface{}{
			"hold_id": holdID,
		})
	}
}
