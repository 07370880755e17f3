package twitchauth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/twitchauth"
)

var _ twitchauth.AuthClient = (*twitchauth.Client)(nil)

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		c, err := twitchauth.NewClient(twitchauth.Config{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
		})
		require.NoError(t, err)
		require.NotNil(t, c)
	})

	t.Run("missing client ID", func(t *testing.T) {
		t.Parallel()
		c, err := twitchauth.NewClient(twitchauth.Config{
			ClientSecret: "test-secret",
		})
		require.ErrorIs(t, err, twitchauth.ErrMissingClientID)
		require.Nil(t, c)
	})

	t.Run("missing client secret", func(t *testing.T) {
		t.Parallel()
		c, err := twitchauth.NewClient(twitchauth.Config{
			ClientID: "test-id",
		})
		require.ErrorIs(t, err, twitchauth.ErrMissingClientSecret)
		require.Nil(t, c)
	})
}

func TestClient_AuthorizeURL(t *testing.T) {
	t.Parallel()

	newClient := func(t *testing.T, cfg twitchauth.Config) *twitchauth.Client {
		t.Helper()
		if cfg.ClientID == "" {
			cfg.ClientID = "test-id"
		}
		if cfg.ClientSecret == "" {
			cfg.ClientSecret = "super-secret"
		}
		c, err := twitchauth.NewClient(cfg)
		require.NoError(t, err)
		return c
	}

	t.Run("includes required query parameters", func(t *testing.T) {
		t.Parallel()
		c := newClient(t, twitchauth.Config{RedirectURL: "https://example.com/callback"})

		u, err := url.Parse(c.AuthorizeURL(twitchauth.AuthorizeParams{}))
		require.NoError(t, err)

		q := u.Query()
		require.Equal(t, "test-id", q.Get("client_id"))
		require.Equal(t, "https://example.com/callback", q.Get("redirect_uri"))
		require.Equal(t, "code", q.Get("response_type"))
		require.Equal(t, "user_read", q.Get("scope"))
	})

	t.Run("targets the default authorize endpoint", func(t *testing.T) {
		t.Parallel()
		c := newClient(t, twitchauth.Config{})

		u := c.AuthorizeURL(twitchauth.AuthorizeParams{})
		require.True(t, strings.HasPrefix(u, twitchauth.DefaultAuthURL+"?"))
	})

	t.Run("state present iff supplied", func(t *testing.T) {
		t.Parallel()
		c := newClient(t, twitchauth.Config{})

		withState, err := url.Parse(c.AuthorizeURL(twitchauth.AuthorizeParams{State: "opaque-123"}))
		require.NoError(t, err)
		require.Equal(t, "opaque-123", withState.Query().Get("state"))

		withoutState, err := url.Parse(c.AuthorizeURL(twitchauth.AuthorizeParams{}))
		require.NoError(t, err)
		require.False(t, withoutState.Query().Has("state"))
	})

	t.Run("never leaks the client secret", func(t *testing.T) {
		t.Parallel()
		c := newClient(t, twitchauth.Config{})

		u := c.AuthorizeURL(twitchauth.AuthorizeParams{
			RedirectURI: "https://example.com/callback",
			Scopes:      []string{"user_read", "channel_read"},
			State:       "opaque",
		})
		require.NotContains(t, u, "super-secret")
	})

	t.Run("per-call overrides", func(t *testing.T) {
		t.Parallel()
		c := newClient(t, twitchauth.Config{
			RedirectURL: "https://example.com/original",
			Scopes:      []string{"user_read"},
		})

		u, err := url.Parse(c.AuthorizeURL(twitchauth.AuthorizeParams{
			RedirectURI: "https://example.com/override",
			Scopes:      []string{"channel_read", "chat_login"},
		}))
		require.NoError(t, err)

		q := u.Query()
		require.Equal(t, "https://example.com/override", q.Get("redirect_uri"))
		require.Equal(t, "channel_read chat_login", q.Get("scope"))
	})

	t.Run("idempotent for identical inputs", func(t *testing.T) {
		t.Parallel()
		c := newClient(t, twitchauth.Config{})

		params := twitchauth.AuthorizeParams{
			RedirectURI: "https://example.com/callback",
			Scopes:      []string{"user_read"},
			State:       "opaque",
		}
		first := c.AuthorizeURL(params)
		second := c.AuthorizeURL(params)
		require.Equal(t, first, second)
	})
}

func TestClient_Exchange(t *testing.T) {
	t.Parallel()

	t.Run("successful exchange", func(t *testing.T) {
		t.Parallel()

		var (
			gotAccept string
			gotForm   url.Values
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotAccept = r.Header.Get("Accept")
			gotForm = r.PostForm

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "test-access-token",
				"refresh_token": "test-refresh-token",
				"token_type":    "bearer",
				"expires_in":    3600,
				"scope":         []string{"user_read"},
			})
		}))
		defer srv.Close()

		c, err := twitchauth.NewClient(twitchauth.Config{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
			RedirectURL:  "https://example.com/callback",
			TokenURL:     srv.URL,
		})
		require.NoError(t, err)

		token, err := c.Exchange(context.Background(), "test-code", "")
		require.NoError(t, err)
		require.Equal(t, "test-access-token", token.AccessToken)
		require.Equal(t, "test-refresh-token", token.RefreshToken)

		require.Equal(t, "application/json", gotAccept)
		require.Equal(t, "authorization_code", gotForm.Get("grant_type"))
		require.Equal(t, "test-code", gotForm.Get("code"))
		require.Equal(t, "test-id", gotForm.Get("client_id"))
		require.Equal(t, "test-secret", gotForm.Get("client_secret"))
		require.Equal(t, "https://example.com/callback", gotForm.Get("redirect_uri"))
	})

	t.Run("custom redirect URI", func(t *testing.T) {
		t.Parallel()

		var gotRedirectURI string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotRedirectURI = r.FormValue("redirect_uri")
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "test-token",
				"token_type":   "bearer",
			})
		}))
		defer srv.Close()

		c, err := twitchauth.NewClient(twitchauth.Config{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
			RedirectURL:  "https://example.com/original",
			TokenURL:     srv.URL,
		})
		require.NoError(t, err)

		_, err = c.Exchange(context.Background(), "test-code", "https://example.com/override")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/override", gotRedirectURI)
	})

	t.Run("provider error payload", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":      nil,
				"error":             "access_denied",
				"error_description": "The user denied access",
			})
		}))
		defer srv.Close()

		c, err := twitchauth.NewClient(twitchauth.Config{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
			TokenURL:     srv.URL,
		})
		require.NoError(t, err)

		_, err = c.Exchange(context.Background(), "denied-code", "")
		require.Error(t, err)

		var tokenErr *twitchauth.TokenError
		require.ErrorAs(t, err, &tokenErr)
		require.Equal(t, "access_denied", tokenErr.Code)
		require.Equal(t, "The user denied access", tokenErr.Description)
	})

	t.Run("provider error status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "Invalid authorization code",
			})
		}))
		defer srv.Close()

		c, err := twitchauth.NewClient(twitchauth.Config{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
			TokenURL:     srv.URL,
		})
		require.NoError(t, err)

		_, err = c.Exchange(context.Background(), "bad-code", "")

		var tokenErr *twitchauth.TokenError
		require.ErrorAs(t, err, &tokenErr)
		require.Equal(t, "invalid_grant", tokenErr.Code)
		require.Equal(t, http.StatusBadRequest, tokenErr.StatusCode)
	})

	t.Run("network failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c, err := twitchauth.NewClient(twitchauth.Config{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
			TokenURL:     srv.URL,
		})
		require.NoError(t, err)

		_, err = c.Exchange(context.Background(), "test-code", "")
		require.ErrorIs(t, err, twitchauth.ErrExchangeFailed)
	})
}

func TestClient_FetchProfile(t *testing.T) {
	t.Parallel()

	newClient := func(t *testing.T, profileURL string) *twitchauth.Client {
		t.Helper()
		c, err := twitchauth.NewClient(twitchauth.Config{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
			ProfileURL:   profileURL,
		})
		require.NoError(t, err)
		return c
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var gotAuthorization, gotAccept string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuthorization = r.Header.Get("Authorization")
			gotAccept = r.Header.Get("Accept")
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"login": "bob",
				"name":  "Bob",
				"email": "bob@x.com",
			})
		}))
		defer srv.Close()

		c := newClient(t, srv.URL)
		profile, err := c.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.NoError(t, err)
		require.Equal(t, "bob", profile["login"])
		require.Equal(t, "Bob", profile["name"])

		require.Equal(t, "OAuth test-token", gotAuthorization)
		require.Equal(t, "application/json", gotAccept)
	})

	t.Run("unauthorized", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
		}))
		defer srv.Close()

		c := newClient(t, srv.URL)
		profile, err := c.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "stale-token"})
		require.ErrorIs(t, err, twitchauth.ErrUnauthorized)
		require.Nil(t, profile)
	})

	t.Run("unexpected status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		}))
		defer srv.Close()

		c := newClient(t, srv.URL)
		profile, err := c.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.Nil(t, profile)

		var profileErr *twitchauth.ProfileError
		require.ErrorAs(t, err, &profileErr)
		require.Equal(t, http.StatusInternalServerError, profileErr.StatusCode)
		require.Equal(t, "boom", string(profileErr.Body))
	})

	t.Run("bad JSON", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("not-json"))
		}))
		defer srv.Close()

		c := newClient(t, srv.URL)
		profile, err := c.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.ErrorIs(t, err, twitchauth.ErrDecodeFailed)
		require.Nil(t, profile)
	})

	t.Run("network failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := newClient(t, srv.URL)
		profile, err := c.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.ErrorIs(t, err, twitchauth.ErrFetchFailed)
		require.Nil(t, profile)
	})

	t.Run("default endpoint via rewrite transport", func(t *testing.T) {
		t.Parallel()

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/kraken/user", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"login": "bob"})
		})

		c, err := twitchauth.NewClient(
			twitchauth.Config{ClientID: "test-id", ClientSecret: "test-secret"},
			twitchauth.WithHTTPClient(&http.Client{
				Transport: &twitchRewriteTransport{handler: handler},
			}),
		)
		require.NoError(t, err)

		profile, err := c.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.NoError(t, err)
		require.Equal(t, "bob", profile["login"])
	})
}

// twitchRewriteTransport intercepts requests to Twitch endpoints and routes
// them to a local handler instead.
type twitchRewriteTransport struct {
	handler http.Handler
}

func (t *twitchRewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host != "api.twitch.tv" {
		return nil, errors.New("unexpected host: " + req.URL.Host)
	}
	recorder := httptest.NewRecorder()
	t.handler.ServeHTTP(recorder, req)
	return recorder.Result(), nil
}
