package statestore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a state store backed by Redis, for deployments where the
// request and callback phases may land on different processes.
type Redis struct {
	client redis.UniversalClient
	opts   *redisOptions
}

// NewRedis creates a new Redis-backed state store. The client lifecycle is
// managed by the caller.
//
// Example:
//
//	s := statestore.NewRedis(client,
//	    statestore.WithPrefix("oauth:state"),
//	    statestore.WithRedisDefaultTTL(10 * time.Minute),
//	)
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Redis{
		client: client,
		opts:   o,
	}
}

// Issue records a state token as pending. Redis expires it on its own
// after the TTL.
func (r *Redis) Issue(ctx context.Context, state string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.opts.defaultTTL
	}
	return r.client.Set(ctx, r.prefixedKey(state), "1", ttl).Err()
}

// Consume removes a pending token and reports whether it was present.
// GETDEL makes the check-and-remove step atomic, so two racing callbacks
// with the same token cannot both validate.
func (r *Redis) Consume(ctx context.Context, state string) (bool, error) {
	err := r.client.GetDel(ctx, r.prefixedKey(state)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Close is a no-op for Redis. The Redis client lifecycle is managed
// separately by the caller.
func (r *Redis) Close() error {
	return nil
}

// prefixedKey returns the full Redis key with prefix.
func (r *Redis) prefixedKey(state string) string {
	if r.opts.prefix == "" {
		return state
	}
	return r.opts.prefix + ":" + state
}

var _ Store = (*Redis)(nil)
