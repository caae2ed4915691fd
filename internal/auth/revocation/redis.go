package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes. Refresh jtis are stored as validity markers, access jtis as
// blacklist entries; the prefixes keep the two namespaces apart.
const (
	refreshKeyPrefix   = "refresh:"
	blacklistKeyPrefix = "blacklist:access:"
)

// Per-call budget against Redis. Each operation gets this timeout and one
// retry before the failure surfaces as ErrUnavailable.
const opTimeout = 500 * time.Millisecond

// RedisStore implements Store on a Redis backend. TTLs ride on Redis key
// expiry, so revocation state cleans itself up without a sweeper.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) PutRefresh(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("revocation: non-positive ttl for refresh jti %q", jti)
	}
	return s.withRetry(ctx, func(ctx context.Context) error {
		return s.client.Set(ctx, refreshKeyPrefix+jti, "1", ttl).Err()
	})
}

func (s *RedisStore) RefreshValid(ctx context.Context, jti string) (bool, error) {
	var n int64
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.client.Exists(ctx, refreshKeyPrefix+jti).Result()
		return err
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) RemoveRefresh(ctx context.Context, jti string) error {
	// DEL on an absent key is a no-op, so repeated logouts succeed.
	return s.withRetry(ctx, func(ctx context.Context) error {
		return s.client.Del(ctx, refreshKeyPrefix+jti).Err()
	})
}

func (s *RedisStore) BlacklistAccess(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired, nothing to block.
		return nil
	}
	return s.withRetry(ctx, func(ctx context.Context) error {
		return s.client.Set(ctx, blacklistKeyPrefix+jti, "1", ttl).Err()
	})
}

func (s *RedisStore) AccessBlacklisted(ctx context.Context, jti string) (bool, error) {
	var n int64
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.client.Exists(ctx, blacklistKeyPrefix+jti).Result()
		return err
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		return s.client.Ping(ctx).Err()
	})
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// withRetry runs op with a bounded timeout and retries once on failure.
// Anything that still fails comes back wrapped in ErrUnavailable so callers
// can fail closed without inspecting transport errors.
func (s *RedisStore) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, opTimeout)
		lastErr = op(opCtx)
		cancel()

		if lastErr == nil {
			return nil
		}
		// Don't retry when the caller's own context is done.
		if ctx.Err() != nil {
			break
		}
	}
	return errors.Join(ErrUnavailable, lastErr)
}
