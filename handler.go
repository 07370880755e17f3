package twitchauth

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/twitchauth/statestore"
)

// DefaultStateTTL is how long an issued state token remains redeemable
// unless WithStateTTL overrides it.
const DefaultStateTTL = 10 * time.Minute

// SuccessFunc receives the canonical result of a completed authentication.
// The host decides what login means: set a session, issue its own token,
// redirect into the app.
type SuccessFunc func(w http.ResponseWriter, r *http.Request, auth *Auth)

// FailureFunc receives the failure value of an unsuccessful authentication.
type FailureFunc func(w http.ResponseWriter, r *http.Request, authErr *AuthError)

// Handler binds the strategy to net/http. It owns the state tokens that
// tie the two phases together: Begin issues one and sends the user to the
// provider, Callback redeems it before the strategy runs. A callback whose
// state does not match a pending token fails with KindCSRFAttack.
//
// Mount Begin and Callback so that the callback route is the begin route
// plus "/callback" (Routes does this); the derived redirect URI relies on
// that shape when no redirect URL is configured.
type Handler struct {
	strategy    *Strategy
	store       statestore.Store
	ownsStore   bool
	stateTTL    time.Duration
	redirectURL string
	logger      *slog.Logger
	onSuccess   SuccessFunc
	onFailure   FailureFunc
}

// NewHandler builds the net/http binding. The success callback is required;
// everything else falls back to defaults: an in-memory state store owned by
// the handler, a plain-text 401 failure response and a no-op logger.
func NewHandler(cfg Config, onSuccess SuccessFunc, opts ...Option) (*Handler, error) {
	if onSuccess == nil {
		return nil, ErrMissingSuccessHandler
	}

	strategy, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store := o.store
	ownsStore := false
	if store == nil {
		store = statestore.NewMemory()
		ownsStore = true
	}

	stateTTL := o.stateTTL
	if stateTTL <= 0 {
		stateTTL = DefaultStateTTL
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	onFailure := o.onFailure
	if onFailure == nil {
		onFailure = defaultFailureHandler
	}

	return &Handler{
		strategy:    strategy,
		store:       store,
		ownsStore:   ownsStore,
		stateTTL:    stateTTL,
		redirectURL: cfg.RedirectURL,
		logger:      logger,
		onSuccess:   onSuccess,
		onFailure:   onFailure,
	}, nil
}

// Routes mounts the two phases on a chi router:
//
//	r.Route("/auth/twitch", h.Routes)
//
// serves Begin at /auth/twitch and Callback at /auth/twitch/callback.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Begin)
	r.Get("/callback", h.Callback)
}

// Begin starts the flow: it issues a state token and redirects the user
// agent to the provider's authorization page. A caller-supplied "state"
// query parameter passes through to the provider unchanged; it still has
// to come back on the callback to be accepted.
func (h *Handler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state := r.FormValue("state")
	if state == "" {
		var err error
		state, err = statestore.NewState()
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to generate state token", slog.Any("error", err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	if err := h.store.Issue(ctx, state, h.stateTTL); err != nil {
		h.logger.ErrorContext(ctx, "failed to record state token", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn := newHTTPConn(w, r)
	conn.override("state", state)
	conn.override("redirect_uri", h.resolveRedirectURL(r, beginCallbackURL))

	if err := h.strategy.HandleRequest(conn); err != nil {
		h.logger.ErrorContext(ctx, "redirect failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Callback finishes the flow: it redeems the state token, runs the
// strategy's callback phase and dispatches the outcome to the success or
// failure callback.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state := r.FormValue("state")
	if state == "" {
		h.fail(w, r, newAuthError(KindCSRFAttack, "Cross-Site Request Forgery attack"))
		return
	}
	ok, err := h.store.Consume(ctx, state)
	if err != nil {
		h.logger.ErrorContext(ctx, "state lookup failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		h.fail(w, r, newAuthError(KindCSRFAttack, "Cross-Site Request Forgery attack"))
		return
	}

	conn := newHTTPConn(w, r)
	conn.override("redirect_uri", h.resolveRedirectURL(r, currentURL))

	auth, err := h.strategy.HandleCallback(ctx, conn)
	if err != nil {
		authErr, ok := AsAuthError(err)
		if !ok {
			authErr = newAuthError(KindOAuth2, err.Error())
		}
		h.fail(w, r, authErr)
		return
	}

	h.logger.DebugContext(ctx, "user authenticated", slog.String("uid", auth.UID))
	h.onSuccess(w, r, auth)
}

// Close releases the state store when the handler owns it.
func (h *Handler) Close() error {
	if h.ownsStore {
		return h.store.Close()
	}
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, authErr *AuthError) {
	h.logger.DebugContext(r.Context(), "authentication failed", slog.String("error", authErr.Error()))
	h.onFailure(w, r, authErr)
}

// resolveRedirectURL picks the configured redirect URL, falling back to
// one derived from the incoming request.
func (h *Handler) resolveRedirectURL(r *http.Request, derive func(*http.Request) string) string {
	if h.redirectURL != "" {
		return h.redirectURL
	}
	return derive(r)
}

// beginCallbackURL derives the callback URL from a begin request: the
// current URL with "/callback" appended to its path.
func beginCallbackURL(r *http.Request) string {
	path := strings.TrimSuffix(r.URL.Path, "/")
	return requestScheme(r) + "://" + r.Host + path + "/callback"
}

// currentURL derives the callback URL from the callback request itself:
// the current URL without its query string.
func currentURL(r *http.Request) string {
	return requestScheme(r) + "://" + r.Host + r.URL.Path
}

// requestScheme resolves the external scheme of a request, honoring the
// forwarded-proto header set by TLS-terminating proxies.
func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func defaultFailureHandler(w http.ResponseWriter, _ *http.Request, authErr *AuthError) {
	kinds := make([]string, len(authErr.Errors))
	for i, e := range authErr.Errors {
		kinds[i] = e.Kind
	}
	http.Error(w, "authentication failed: "+strings.Join(kinds, ", "), http.StatusUnauthorized)
}

// httpConn adapts an HTTP request/response pair to the strategy's Conn.
// Overrides shadow request parameters of the same name, which is how the
// handler keeps the state and redirect_uri parameters out of the caller's
// hands.
type httpConn struct {
	w         http.ResponseWriter
	r         *http.Request
	overrides map[string]string
}

func newHTTPConn(w http.ResponseWriter, r *http.Request) *httpConn {
	return &httpConn{w: w, r: r}
}

func (c *httpConn) override(name, value string) {
	if c.overrides == nil {
		c.overrides = make(map[string]string)
	}
	c.overrides[name] = value
}

// Param returns the named parameter, preferring overrides over query and
// form values.
func (c *httpConn) Param(name string) string {
	if v, ok := c.overrides[name]; ok {
		return v
	}
	return c.r.FormValue(name)
}

// Redirect sends a 302 to the given URL.
func (c *httpConn) Redirect(url string) error {
	http.Redirect(c.w, c.r, url, http.StatusFound)
	return nil
}

var _ Conn = (*httpConn)(nil)
