package statestore

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisConnectAttempts = 3
	redisConnectBackoff  = time.Second
)

// OpenRedis connects to the Redis instance at url and verifies the
// connection with a ping before returning. Both redis:// and rediss://
// (TLS) URL schemes are supported. Failed attempts are retried with
// linear backoff until ctx is done, so the store can start while Redis
// is still coming up.
//
// The returned client is ready to hand to [NewRedis]:
//
//	client, err := statestore.OpenRedis(ctx, os.Getenv("REDIS_URL"))
//	if err != nil {
//	    return err
//	}
//	store := statestore.NewRedis(client)
func OpenRedis(ctx context.Context, url string) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrInvalidRedisURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrInvalidRedisURL
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}

	for attempt := 0; attempt < redisConnectAttempts; attempt++ {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisUnavailable, ctx.Err())
		case <-time.After(time.Duration(attempt+1) * redisConnectBackoff):
		}
	}

	return nil, ErrRedisUnavailable
}

// MustOpenRedis creates a Redis client or exits on failure.
// Use in main where startup failure is fatal.
func MustOpenRedis(ctx context.Context, url string) redis.UniversalClient {
	client, err := OpenRedis(ctx, url)
	if err != nil {
		slog.Error("failed to open redis connection", "error", err)
		os.Exit(1)
	}
	return client
}
