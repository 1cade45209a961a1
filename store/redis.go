package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	admission "github.com/admitkit/go-admission"
)

// RedisStore implements the admission.Store interface using Redis as the
// backend. It is the adapter to use when several application instances must
// share one quota state: Redis serializes the increments, so no two
// concurrent requests under the same key can observe the same count.
type RedisStore struct {
	client          *redis.Client
	incrementScript *redis.Script
}

// NewRedis creates a new RedisStore. The increment script is pre-compiled
// so steady-state traffic costs a single EVALSHA round trip.
func NewRedis(client *redis.Client) admission.Store {
	// INCR and the conditional PEXPIRE must run as one atomic unit,
	// otherwise a crash between them leaves a counter with no TTL.
	const incrementLua = `
		local current = redis.call("INCR", KEYS[1])
		if tonumber(current) == 1 then
			redis.call("PEXPIRE", KEYS[1], ARGV[1])
		end
		return current
	`

	return &RedisStore{
		client:          client,
		incrementScript: redis.NewScript(incrementLua),
	}
}

// Increment atomically increments the counter at key, creating it with the
// given TTL on first use, and returns the post-increment value.
func (s *RedisStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	res, err := s.incrementScript.Run(ctx, s.client, []string{key}, ttl.Milliseconds()).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "increment counter %q", key)
	}
	count, ok := res.(int64)
	if !ok {
		return 0, errors.Errorf("increment counter %q: unexpected reply type %T", key, res)
	}
	return count, nil
}

// Ping reports whether Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return errors.Wrap(s.client.Ping(ctx).Err(), "redis ping")
}
