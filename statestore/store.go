package statestore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"
)

// stateBytes is the entropy of a generated state token.
const stateBytes = 32

// Store tracks pending OAuth state tokens between the request and callback
// phases. A token is valid for exactly one callback: Consume reports whether
// the token was pending and removes it in the same step, so a replayed
// callback never validates twice.
//
// TTL semantics for Issue: positive durations bound the token lifetime;
// zero or negative durations select the store's configured default.
type Store interface {
	// Issue records a state token as pending for the given TTL.
	Issue(ctx context.Context, state string, ttl time.Duration) error

	// Consume removes a pending token and reports whether it was present
	// and unexpired. A missing, expired or already-consumed token is not
	// an error; it reports false.
	Consume(ctx context.Context, state string) (bool, error)

	// Close releases resources (stops background goroutines, etc.).
	Close() error
}

// NewState generates a fresh state token: 32 bytes of entropy encoded as
// unpadded URL-safe base64.
func NewState() (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
