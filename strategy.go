package twitchauth

import (
	"context"
	"errors"
	"fmt"
)

// Conn is the connection surface the strategy needs from the host
// framework: read one request parameter and issue a redirect. The net/http
// adapter in this package implements it; other hosts (custom routers, test
// harnesses) supply their own.
type Conn interface {
	// Param returns the named request parameter, or "" when absent.
	Param(name string) string

	// Redirect sends the user agent to the given URL.
	Redirect(url string) error
}

// Strategy orchestrates the two-phase authorization-code flow: the request
// phase redirects the user to the provider, the callback phase turns the
// provider's response into an Auth result or an AuthError.
//
// A Strategy holds no per-request state and serves concurrent requests.
type Strategy struct {
	client   AuthClient
	uidField string
}

// New builds a Strategy from the configuration. Unless WithClient supplies
// a replacement, the provider client is constructed from cfg and the client
// id and secret are required.
func New(cfg Config, opts ...Option) (*Strategy, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client := o.client
	if client == nil {
		var err error
		client, err = NewClient(cfg, WithHTTPClient(o.httpClient))
		if err != nil {
			return nil, err
		}
	}

	uidField := cfg.UIDField
	if uidField == "" {
		uidField = DefaultUIDField
	}

	return &Strategy{
		client:   client,
		uidField: uidField,
	}, nil
}

// HandleRequest runs the request phase: it builds the authorization URL and
// redirects the user agent to it. The "scope", "state" and "redirect_uri"
// request parameters override the configured defaults when present; the
// state parameter passes through to the provider unchanged.
func (s *Strategy) HandleRequest(conn Conn) error {
	params := AuthorizeParams{
		RedirectURI: conn.Param("redirect_uri"),
		State:       conn.Param("state"),
	}
	if scope := conn.Param("scope"); scope != "" {
		params.Scopes = splitScopes(scope)
	}
	return conn.Redirect(s.client.AuthorizeURL(params))
}

// HandleCallback runs the callback phase: it exchanges the authorization
// code for a token, fetches the user profile and maps both into the
// canonical Auth result. On any failure it returns a *AuthError describing
// what went wrong; the token never outlives this call on a failure path.
//
// A callback without a "code" parameter fails with KindMissingCode no
// matter what else the request carries.
func (s *Strategy) HandleCallback(ctx context.Context, conn Conn) (*Auth, error) {
	code := conn.Param("code")
	if code == "" {
		return nil, newAuthError(KindMissingCode, "No code received")
	}

	token, err := s.client.Exchange(ctx, code, conn.Param("redirect_uri"))
	if err != nil {
		return nil, failureFrom(err)
	}

	profile, err := s.client.FetchProfile(ctx, token)
	if err != nil {
		return nil, failureFrom(err)
	}

	return newAuth(token, profile, s.uidField), nil
}

// failureFrom maps a client error onto the failure taxonomy:
//
//   - provider error payload from the token endpoint: the provider's error
//     code and description verbatim
//   - HTTP 401 from the profile endpoint: KindUnauthorized
//   - any other non-success status or network failure: KindOAuth2 with the
//     underlying reason
func failureFrom(err error) *AuthError {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		if tokenErr.Code != "" {
			return newAuthError(tokenErr.Code, tokenErr.Description)
		}
		return newAuthError(KindOAuth2, fmt.Sprintf("token request returned status %d", tokenErr.StatusCode))
	}

	if errors.Is(err, ErrUnauthorized) {
		return newAuthError(KindUnauthorized, "unauthorized")
	}

	var profileErr *ProfileError
	if errors.As(err, &profileErr) {
		return newAuthError(KindOAuth2, fmt.Sprintf("profile request returned status %d", profileErr.StatusCode))
	}

	return newAuthError(KindOAuth2, causeMessage(err))
}
