package locks

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"transitly/pkg/logger"
)

// Locker serializes hold creation on a single session. Acquire never
// blocks: a contended lock returns false immediately and the caller
// retries. The lock is a contention reducer, not the correctness
// mechanism; the row-locked hold transaction stays safe without it.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) bool
	Release(ctx context.Context, key string)
}

// Service implements Locker on Redis SET NX with expiry.
//
// failOpen decides what happens when Redis is unreachable: true lets
// the operation proceed unlocked (storage transaction is the safety
// net), false rejects it until the backend recovers.
type Service struct {
	client   *redis.Client
	failOpen bool
	logger   *logger.Logger
}

func NewService(client *redis.Client, failOpen bool) *Service {
	return &Service{
		client:   client,
		failOpen: failOpen,
		logger:   logger.GetDefault(),
	}
}

// Acquire attempts a non-blocking set-if-absent with the given TTL.
func (s *Service) Acquire(ctx context.Context, key string, ttl time.Duration) bool {
	if s.client == nil {
		return s.failOpen
	}

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		s.logger.ErrorWithContext(ctx, "Lock backend unavailable", err, map[string]interface{}{
			"key":       key,
			"fail_open": s.failOpen,
		})
		return s.failOpen
	}
	return ok
}

// Release deletes the lock key. Best-effort: an undeleted key expires
// on its own TTL, so errors are logged and swallowed.
func (s *Service) Release(ctx context.Context, key string) {
	if s.client == nil {
		return
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.ErrorWithContext(ctx, "Failed to release lock", err, map[string]interface{}{
			"key": key,
		})
	}
}
