package authconfig

import "strings"

// Config holds the credentials and endpoints for one (provider, platform)
// pair. Loaded once from a config file and immutable afterwards.
type Config struct {
	Provider string `yaml:"-"`
	Platform string `yaml:"-"`

	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// WebClientID is used by mobile platforms that validate ID tokens issued
	// to the companion web client.
	WebClientID string `yaml:"web_client_id"`
	AuthURI     string `yaml:"auth_uri"`
	TokenURI    string `yaml:"token_uri"`
	RedirectURI string `yaml:"redirect_uri"`
	Scope       string `yaml:"scope"`

	// Apple Sign-In fields. ClientSecret is unused for Apple; the secret is
	// minted per exchange from the key file.
	TeamID      string `yaml:"team_id"`
	KeyID       string `yaml:"key_id"`
	AuthKeyPath string `yaml:"auth_key_path"`

	// DeepLinkScheme is the custom URL scheme mobile clients use to intercept
	// the redirect (e.g. "voiceassistance").
	DeepLinkScheme string `yaml:"deep_link_scheme"`
}

// Public is the subset of Config that is safe to hand to clients.
type Public struct {
	Provider       string `json:"provider"`
	Platform       string `json:"platform"`
	ClientID       string `json:"client_id"`
	WebClientID    string `json:"web_client_id,omitempty"`
	AuthURI        string `json:"authorization_endpoint"`
	TokenURI       string `json:"token_endpoint"`
	RedirectURI    string `json:"redirect_uri,omitempty"`
	Scope          string `json:"scope"`
	DeepLinkScheme string `json:"deep_link_scheme,omitempty"`
}

// Public returns the client-safe view of the config. Key material, client
// secrets and team identifiers never leave the server.
func (c *Config) Public() Public {
	return Public{
		Provider:       c.Provider,
		Platform:       c.Platform,
		ClientID:       c.ClientID,
		WebClientID:    c.WebClientID,
		AuthURI:        c.AuthURI,
		TokenURI:       c.TokenURI,
		RedirectURI:    c.RedirectURI,
		Scope:          c.Scope,
		DeepLinkScheme: c.DeepLinkScheme,
	}
}

// Scopes splits the space-separated scope string.
func (c *Config) Scopes() []string {
	return strings.Fields(c.Scope)
}

// defaultScope applies to providers whose config file does not set one.
const defaultScope = "openid email profile"

// defaultTokenEndpoints fills token_uri for well-known providers.
var defaultTokenEndpoints = map[string]string{
	"google":    "https://oauth2.googleapis.com/token",
	"apple":     "https://appleid.apple.com/auth/token",
	"microsoft": "https://login.microsoftonline.com/common/oauth2/v2.0/token",
	"github":    "https://github.com/login/oauth/access_token",
}

// defaultAuthEndpoints fills auth_uri for well-known providers.
var defaultAuthEndpoints = map[string]string{
	"google":    "https://accounts.google.com/o/oauth2/v2/auth",
	"apple":     "https://appleid.apple.com/auth/authorize",
	"microsoft": "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
	"github":    "https://github.com/login/oauth/authorize",
}

// applyDefaults fills endpoint and scope defaults for known providers.
func (c *Config) applyDefaults() {
	if c.TokenURI == "" {
		c.TokenURI = defaultTokenEndpoints[c.Provider]
	}
	if c.AuthURI == "" {
		c.AuthURI = defaultAuthEndpoints[c.Provider]
	}
	if c.Scope == "" {
		c.Scope = defaultScope
	}
}
