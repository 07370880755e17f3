package twitchauth

// Default Twitch endpoints. The library targets the Kraken-era API surface,
// which authenticates profile requests with the "OAuth" authorization scheme.
const (
	DefaultAuthURL    = "https://api.twitch.tv/kraken/oauth2/authorize"
	DefaultTokenURL   = "https://api.twitch.tv/kraken/oauth2/token"
	DefaultProfileURL = "https://api.twitch.tv/kraken/user"
)

// DefaultUIDField is the profile field used as the user identifier when the
// configuration does not name one.
const DefaultUIDField = "login"

// DefaultScopes returns the scopes requested when neither the configuration
// nor the incoming request names any.
func DefaultScopes() []string {
	return []string{"user_read"}
}

// Config holds Twitch OAuth configuration.
// Embed it in your app config for env parsing with caarlos0/env.
type Config struct {
	ClientID     string   `env:"TWITCH_CLIENT_ID,required"`
	ClientSecret string   `env:"TWITCH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"TWITCH_REDIRECT_URL" envDefault:""`
	Scopes       []string `env:"TWITCH_SCOPES" envSeparator:","`

	// UIDField selects the profile field returned as Auth.UID.
	UIDField string `env:"TWITCH_UID_FIELD" envDefault:"login"`

	// Endpoint overrides. Zero values select the Twitch defaults; tests and
	// self-hosted gateways point these at their own servers.
	AuthURL    string `env:"TWITCH_AUTH_URL" envDefault:""`
	TokenURL   string `env:"TWITCH_TOKEN_URL" envDefault:""`
	ProfileURL string `env:"TWITCH_PROFILE_URL" envDefault:""`
}
