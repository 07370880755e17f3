package twitchauth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// maxErrorBody caps how much of an error response body is retained for
// diagnostics.
const maxErrorBody = 64 << 10

// Profile is the raw user document returned by the provider, decoded as
// generic JSON. Keys follow the Twitch user resource (login, name, email,
// bio, logo, partnered, ...).
type Profile map[string]any

// AuthorizeParams describes a single authorization redirect. Zero-value
// fields fall back to the client configuration.
type AuthorizeParams struct {
	// RedirectURI overrides the configured redirect URL for this request.
	RedirectURI string
	// Scopes overrides the configured scopes for this request.
	Scopes []string
	// State is the opaque CSRF token echoed back on the callback. Empty
	// state is omitted from the URL.
	State string
}

// AuthClient performs the provider-facing half of the flow: building the
// authorization URL, exchanging the code and fetching the user profile.
// Implementations must be safe for concurrent use. The default
// implementation is Client; swap it out to target another OAuth2 provider
// or to stub the provider in tests.
type AuthClient interface {
	AuthorizeURL(params AuthorizeParams) string
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, token *oauth2.Token) (Profile, error)
}

// Client is the default AuthClient backed by the Twitch OAuth2 endpoints.
// All methods operate on per-call copies of the configuration, so a single
// Client serves concurrent requests.
type Client struct {
	config      oauth2.Config
	profileURL  string
	httpClient  *http.Client
	tokenClient *http.Client
}

// NewClient builds a Client from the configuration. The client id and
// secret are required; endpoints and scopes fall back to the Twitch
// defaults.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	profileURL := cfg.ProfileURL
	if profileURL == "" {
		profileURL = DefaultProfileURL
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes()
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
				// Twitch expects client credentials in the POST body, not
				// in a basic auth header.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		profileURL: profileURL,
		httpClient: httpClient,
		tokenClient: &http.Client{
			Transport: acceptJSONTransport{base: httpClient.Transport},
			Timeout:   httpClient.Timeout,
		},
	}, nil
}

// AuthorizeURL builds the authorization redirect URL. The result carries
// the client id, redirect URI, response_type=code and the scope list; the
// client secret never appears in it.
func (c *Client) AuthorizeURL(params AuthorizeParams) string {
	cfg := c.config
	if params.RedirectURI != "" {
		cfg.RedirectURL = params.RedirectURI
	}
	if len(params.Scopes) > 0 {
		cfg.Scopes = params.Scopes
	}
	return cfg.AuthCodeURL(params.State)
}

// Exchange trades an authorization code for a token. Provider-reported
// grant errors come back as *TokenError with the provider code and
// description preserved; transport and malformed-response errors wrap
// ErrExchangeFailed.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	cfg := c.config
	if redirectURI != "" {
		cfg.RedirectURL = redirectURI
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.tokenClient)
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			return nil, &TokenError{
				Code:        retrieveErr.ErrorCode,
				Description: retrieveErr.ErrorDescription,
				StatusCode:  status,
				Body:        retrieveErr.Body,
			}
		}
		return nil, errors.Join(ErrExchangeFailed, err)
	}
	return token, nil
}

// FetchProfile loads the user resource for the token. Twitch expects the
// token in an "Authorization: OAuth <token>" header rather than the usual
// Bearer scheme. A 401 wraps ErrUnauthorized; any other non-2xx/3xx status
// returns a *ProfileError.
func (c *Client) FetchProfile(ctx context.Context, token *oauth2.Token) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "OAuth "+token.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.Join(ErrUnauthorized, &ProfileError{StatusCode: resp.StatusCode, Body: body})
	}
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ProfileError{StatusCode: resp.StatusCode, Body: body}
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, errors.Join(ErrDecodeFailed, err)
	}
	return profile, nil
}

// acceptJSONTransport asks the token endpoint for a JSON response. Twitch
// historically answered token requests with form encoding unless JSON was
// requested explicitly.
type acceptJSONTransport struct {
	base http.RoundTripper
}

func (t acceptJSONTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Accept", "application/json")
	return base.RoundTrip(clone)
}
