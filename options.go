package twitchauth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/twitchauth/statestore"
)

// Option configures the client, strategy and handler constructors.
// Options that do not apply to a given constructor are ignored by it.
type Option func(*options)

type options struct {
	httpClient *http.Client
	client     AuthClient
	logger     *slog.Logger
	store      statestore.Store
	stateTTL   time.Duration
	onFailure  FailureFunc
}

// WithHTTPClient sets a custom HTTP client for provider requests.
// This is useful for testing with httptest servers or injecting
// custom transports (e.g., logging, retries).
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithClient replaces the default provider client used by the strategy.
// Use it to point the strategy at another OAuth2 deployment or to stub
// the provider in tests.
func WithClient(client AuthClient) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithLogger sets the logger used by the HTTP handler.
// If nil or not provided, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStateStore sets the store backing CSRF state tokens.
// Defaults to an in-memory store owned by the handler.
func WithStateStore(store statestore.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithStateTTL sets how long an issued state token remains redeemable.
// Defaults to 10 minutes.
func WithStateTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.stateTTL = ttl
	}
}

// WithFailureHandler sets the callback invoked when authentication fails.
// The default writes a plain-text 401 response listing the failure kinds.
func WithFailureHandler(fn FailureFunc) Option {
	return func(o *options) {
		o.onFailure = fn
	}
}
