package twitchauth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingClientID is returned when the client ID is not provided.
	ErrMissingClientID = errors.New("twitchauth: missing client ID")

	// ErrMissingClientSecret is returned when the client secret is not provided.
	ErrMissingClientSecret = errors.New("twitchauth: missing client secret")

	// ErrMissingSuccessHandler is returned when a handler is constructed
	// without a success callback.
	ErrMissingSuccessHandler = errors.New("twitchauth: missing success handler")

	// ErrUnauthorized is returned when the profile endpoint rejects the
	// access token with HTTP 401.
	ErrUnauthorized = errors.New("twitchauth: unauthorized")

	// ErrExchangeFailed is returned when the token exchange fails before the
	// provider produces a response (network-level failure).
	ErrExchangeFailed = errors.New("twitchauth: token exchange failed")

	// ErrFetchFailed is returned when the request to the profile endpoint fails
	// before the provider produces a response.
	ErrFetchFailed = errors.New("twitchauth: failed to fetch from provider")

	// ErrDecodeFailed is returned when decoding a provider response fails.
	ErrDecodeFailed = errors.New("twitchauth: failed to decode provider response")
)

// Failure kinds reported in AuthError entries. Provider-issued kinds (the
// token endpoint's error code, e.g. "access_denied") pass through verbatim
// and are not listed here.
const (
	// KindMissingCode marks a callback request that carried no authorization code.
	KindMissingCode = "missing_code"

	// KindUnauthorized marks a profile fetch rejected with HTTP 401.
	KindUnauthorized = "token"

	// KindOAuth2 marks a network-level or otherwise unclassified OAuth2 failure.
	KindOAuth2 = "OAuth2"

	// KindCSRFAttack marks a callback whose state parameter failed validation.
	KindCSRFAttack = "csrf_attack"
)

// TokenError is returned by Exchange when the token endpoint answers with an
// OAuth2 error payload instead of a token. Code and Description are taken
// verbatim from the provider's error response and may be empty when the
// provider returned neither a token nor an error field.
type TokenError struct {
	Code        string // provider error code, e.g. "access_denied"
	Description string // provider error description
	StatusCode  int    // HTTP status of the token response
	Body        []byte // raw response body for diagnostics
}

// Error implements the error interface.
func (e *TokenError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("twitchauth: token endpoint returned status %d without access token", e.StatusCode)
	}
	if e.Description == "" {
		return fmt.Sprintf("twitchauth: token endpoint error %q", e.Code)
	}
	return fmt.Sprintf("twitchauth: token endpoint error %q: %s", e.Code, e.Description)
}

// ProfileError is returned by FetchProfile on a non-success HTTP status.
// The raw status and body are kept for diagnostics.
type ProfileError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *ProfileError) Error() string {
	return fmt.Sprintf("twitchauth: profile endpoint returned status %d", e.StatusCode)
}

// Error is a single (kind, message) failure pair surfaced to the host
// application. Kind is either one of the Kind constants or a provider-issued
// OAuth2 error code.
type Error struct {
	Kind    string
	Message string
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Message == "" {
		return e.Kind
	}
	return e.Kind + ": " + e.Message
}

// AuthError is the failure value produced by the callback phase. It carries
// one or more (kind, message) pairs; a callback either fully succeeds or
// yields exactly one AuthError.
type AuthError struct {
	Errors []Error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, er := range e.Errors {
		msgs[i] = er.Error()
	}
	return "twitchauth: authentication failed: " + strings.Join(msgs, "; ")
}

// newAuthError builds an AuthError from a single failure pair.
func newAuthError(kind, message string) *AuthError {
	return &AuthError{Errors: []Error{{Kind: kind, Message: message}}}
}

// causeMessage returns the message of the innermost joined error. Failure
// messages surfaced to the host application carry the underlying cause, not
// the sentinel it was joined with.
func causeMessage(err error) string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			return errs[len(errs)-1].Error()
		}
	}
	return err.Error()
}

// IsAuthError returns true if the error is an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// AsAuthError extracts the AuthError from an error if present.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
