// Package twitchauth authenticates users against Twitch via the OAuth2
// authorization-code flow and maps the result into a canonical identity
// record.
//
// The package is split into three layers; each lower layer is usable on
// its own:
//
//   - [Client] talks to the provider: it builds the authorization URL,
//     exchanges the callback code for a token and fetches the user profile.
//   - [Strategy] drives the two-phase flow over the [Conn] abstraction and
//     turns the provider's responses into an [Auth] result or an [AuthError].
//   - [Handler] binds the strategy to net/http and guards the callback
//     with single-use CSRF state tokens from package statestore.
//
// # Quick Start
//
// Build the handler with a success callback and mount it:
//
//	var cfg twitchauth.Config
//	if err := env.Parse(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
//	h, err := twitchauth.NewHandler(cfg, func(w http.ResponseWriter, r *http.Request, auth *twitchauth.Auth) {
//	    // establish the application session for auth.UID
//	    http.Redirect(w, r, "/", http.StatusFound)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	r := chi.NewRouter()
//	r.Route("/auth/twitch", h.Routes)
//
// Visiting /auth/twitch redirects to Twitch; Twitch sends the user back to
// /auth/twitch/callback, and the success callback receives the [Auth]
// result. Authentication failures go to the failure callback
// ([WithFailureHandler]) as an [AuthError] listing (kind, message) pairs.
//
// # Configuration
//
// [Config] carries the application credentials and optional overrides.
// Its env tags follow the TWITCH_* convention, so it can be embedded in an
// application config parsed with caarlos0/env:
//
//	TWITCH_CLIENT_ID=...      required
//	TWITCH_CLIENT_SECRET=...  required
//	TWITCH_REDIRECT_URL=...   optional; derived from the request when empty
//	TWITCH_SCOPES=user_read   optional, comma-separated
//	TWITCH_UID_FIELD=login    optional; profile field used as Auth.UID
//
// # Using the Strategy Directly
//
// Hosts that are not plain net/http implement [Conn] (one method to read a
// request parameter, one to redirect) and call [Strategy.HandleRequest]
// and [Strategy.HandleCallback] themselves. [Strategy.HandleCallback]
// returns *[AuthError] for every flow failure:
//
//   - "missing_code": the callback carried no authorization code
//   - a provider error code verbatim (e.g. "access_denied") when the token
//     endpoint answered with an OAuth2 error payload
//   - "token": the profile endpoint rejected the access token with HTTP 401
//   - "OAuth2": a network-level or otherwise unclassified failure
//
// # Swapping the Provider Client
//
// [New] and [NewHandler] accept [WithClient] to replace the default
// [Client] with any [AuthClient] implementation, which is also the hook
// for stubbing the provider in tests.
package twitchauth
