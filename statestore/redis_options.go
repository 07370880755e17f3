package statestore

import "time"

// RedisOption configures the Redis state store.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix     string
	defaultTTL time.Duration
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{
		prefix:     "oauth:state",
		defaultTTL: 10 * time.Minute,
	}
}

// WithPrefix sets the Redis key prefix for pending tokens.
// Default: "oauth:state".
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}

// WithRedisDefaultTTL sets the expiration applied when Issue is called
// with a non-positive TTL.
// Default: 10 minutes.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		o.defaultTTL = d
	}
}
