package oauth

import (
	"context"

	"github.com/NeechLog/voiceauth/pkg/authconfig"
)

// UserInfo represents provider-agnostic user information extracted from a
// token response or a userinfo endpoint.
type UserInfo struct {
	ID             string         `json:"id"` // Provider's unique user identifier
	Email          string         `json:"email"`
	Name           string         `json:"name,omitempty"`
	Picture        string         `json:"picture,omitempty"`
	EmailVerified  bool           `json:"email_verified"`
	IsPrivateEmail bool           `json:"is_private_email,omitempty"`
	Provider       string         `json:"provider"`
	Raw            map[string]any `json:"-"`
}

// IsEmpty reports whether the provider returned no usable identity.
// Apple does this on repeat authorizations; callers accept but flag it.
func (u *UserInfo) IsEmpty() bool {
	return u == nil || (u.ID == "" && u.Email == "")
}

// Token is a provider token-endpoint response in normalized form.
type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`

	// UserPayload carries the `user` form field Apple posts alongside the
	// authorization code on first authorization. Set by the caller before
	// UserInfo, ignored by providers without such a channel.
	UserPayload string `json:"-"`
}

// Provider abstracts provider-specific OAuth operations.
// Implementations are stateless: credentials arrive per call so that
// configuration can be reloaded without rebuilding providers.
type Provider interface {
	// Name returns the provider identifier (e.g., "google", "apple").
	Name() string

	// AuthCodeURL builds the authorization URL for the given state ID and
	// PKCE S256 challenge. An empty challenge omits the PKCE parameters.
	AuthCodeURL(cfg *authconfig.Config, state, challenge string) string

	// Exchange trades an authorization code for tokens. The verifier, when
	// non-empty, is sent as the PKCE code_verifier. redirectURI overrides
	// the configured redirect URI when non-empty.
	Exchange(ctx context.Context, cfg *authconfig.Config, code, verifier, redirectURI string) (*Token, error)

	// UserInfo extracts user information from a token response.
	// Implementations prefer identity-token claims over extra network
	// round trips. An empty result is not an error.
	UserInfo(ctx context.Context, cfg *authconfig.Config, tok *Token) (*UserInfo, error)
}
