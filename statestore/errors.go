package statestore

import "errors"

// Sentinel errors for store operations.
var (
	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("statestore: closed")

	// ErrInvalidRedisURL is returned when OpenRedis is given an empty or
	// unparseable connection URL.
	ErrInvalidRedisURL = errors.New("statestore: invalid redis url")

	// ErrRedisUnavailable is returned when OpenRedis cannot reach Redis.
	ErrRedisUnavailable = errors.New("statestore: redis unavailable")
)
