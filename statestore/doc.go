// Package statestore tracks pending OAuth state tokens between the request
// and callback phases of an authorization-code flow.
//
// The request phase issues an opaque token and sends it to the provider as
// the state parameter; the callback phase consumes the token that comes
// back. Consume is a single atomic check-and-remove, so each token
// validates at most once and a replayed callback fails.
//
// # Interface
//
// Both implementations share the same [Store] interface:
//
//   - Issue records a token as pending for a TTL
//   - Consume redeems a token exactly once
//   - Close releases resources
//
// A non-positive TTL on Issue selects the store's configured default
// (10 minutes by default). Use [NewState] to generate tokens.
//
// # In-Memory Store
//
// Use [NewMemory] for single-process deployments or testing. Expired
// tokens are reaped by a background janitor goroutine, and an optional cap
// bounds the number of pending tokens:
//
//	s := statestore.NewMemory(
//	    statestore.WithDefaultTTL(10 * time.Minute),
//	    statestore.WithMaxPending(10000),
//	)
//	defer s.Close()
//
// # Redis Store
//
// Use [NewRedis] when the request and callback phases may land on
// different processes. Requires a [github.com/redis/go-redis/v9.UniversalClient];
// tokens expire server-side and consumption uses GETDEL:
//
//	client, err := statestore.OpenRedis(ctx, os.Getenv("REDIS_URL"))
//	if err != nil {
//	    return err
//	}
//	s := statestore.NewRedis(client,
//	    statestore.WithPrefix("oauth:state"),
//	)
//
// [OpenRedis] dials the URL and verifies connectivity with a ping,
// retrying with backoff while Redis comes up. Any other way of building
// the client works too; the store only needs the interface.
package statestore
