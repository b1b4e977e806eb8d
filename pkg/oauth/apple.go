package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/NeechLog/voiceauth/pkg/authconfig"
)

const (
	// AppleProviderName is the identifier for the Sign in with Apple provider.
	AppleProviderName = "apple"

	appleAudience         = "https://appleid.apple.com"
	appleClientSecretTTL  = 30 * time.Minute
	appleResponseModeForm = "form_post"
)

// AppleProvider implements Provider for Sign in with Apple.
//
// Apple has no client secret in the usual sense. Each token exchange mints a
// short-lived ES256 JWT signed with the team's private key, and the callback
// arrives as a form POST because Apple requires form_post whenever the name
// or email scope is requested.
type AppleProvider struct {
	client  *http.Client
	timeNow func() time.Time
	readKey func(path string) ([]byte, error)
}

// NewAppleProvider creates a new Apple OAuth provider.
func NewAppleProvider(opts ...Option) *AppleProvider {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &AppleProvider{
		client:  o.httpClient,
		timeNow: time.Now,
		readKey: os.ReadFile,
	}
}

// Name returns the provider identifier.
func (p *AppleProvider) Name() string {
	return AppleProviderName
}

// AuthCodeURL generates the authorization URL. The response mode is always
// form_post: Apple mandates it when name or email scopes are requested, so
// the callback endpoint must accept POST.
func (p *AppleProvider) AuthCodeURL(cfg *authconfig.Config, state, challenge string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("response_mode", appleResponseModeForm)
	q.Set("client_id", cfg.ClientID)
	q.Set("redirect_uri", cfg.RedirectURI)
	q.Set("scope", strings.Join(cfg.Scopes(), " "))
	q.Set("state", state)
	if challenge != "" {
		q.Set("code_challenge", challenge)
		q.Set("code_challenge_method", "S256")
	}
	return cfg.AuthURI + "?" + q.Encode()
}

// ClientSecret mints the ES256 client-secret JWT Apple expects in place of a
// static secret. The private key is read from cfg.AuthKeyPath on every call
// so that key rotation needs no process restart.
func (p *AppleProvider) ClientSecret(cfg *authconfig.Config) (string, error) {
	if cfg.TeamID == "" || cfg.KeyID == "" || cfg.AuthKeyPath == "" {
		return "", errors.Join(ErrMissingClientSecret, errors.New("apple requires team_id, key_id and auth_key_path"))
	}

	pemBytes, err := p.readKey(cfg.AuthKeyPath)
	if err != nil {
		return "", errors.Join(ErrMissingClientSecret, fmt.Errorf("read signing key: %w", err))
	}
	key, err := jwt.ParseECPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return "", errors.Join(ErrMissingClientSecret, fmt.Errorf("parse signing key: %w", err))
	}

	now := p.timeNow()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.RegisteredClaims{
		Issuer:    cfg.TeamID,
		Subject:   cfg.ClientID,
		Audience:  jwt.ClaimStrings{appleAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(appleClientSecretTTL)),
	})
	token.Header["kid"] = cfg.KeyID

	secret, err := token.SignedString(key)
	if err != nil {
		return "", errors.Join(ErrMissingClientSecret, fmt.Errorf("sign client secret: %w", err))
	}
	return secret, nil
}

// Exchange trades an authorization code for tokens, minting a fresh client
// secret for the request.
func (p *AppleProvider) Exchange(ctx context.Context, cfg *authconfig.Config, code, verifier, redirectURI string) (*Token, error) {
	clientSecret, err := p.ClientSecret(cfg)
	if err != nil {
		return nil, err
	}

	oc := oauthConfig(cfg, redirectURI)
	oc.ClientSecret = clientSecret

	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	if p.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	}
	tok, err := oc.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, wrapExchangeError(AppleProviderName, err)
	}
	return normalizeToken(tok), nil
}

// UserInfo extracts user information from the token response. Apple exposes
// no userinfo endpoint: identity comes from the id_token, whose claims are
// trusted because the token arrived over a direct TLS exchange with Apple.
// The user's name is only ever present in the first-authorization user
// payload, never in the id_token.
func (p *AppleProvider) UserInfo(_ context.Context, _ *authconfig.Config, tok *Token) (*UserInfo, error) {
	info := &UserInfo{Provider: AppleProviderName}

	if tok.IDToken != "" {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(tok.IDToken, claims); err != nil {
			return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("parse id_token: %w", err))
		}
		info.ID = stringClaim(claims, "sub")
		info.Email = stringClaim(claims, "email")
		info.Raw = claims
		info.EmailVerified = boolishClaim(claims, "email_verified")
		info.IsPrivateEmail = boolishClaim(claims, "is_private_email")
	}

	if name := nameFromUserPayload(tok.UserPayload); name != "" {
		info.Name = name
	}
	return info, nil
}

// appleUserPayload is the JSON document Apple posts in the `user` form field
// on first authorization.
type appleUserPayload struct {
	Name struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"name"`
	Email string `json:"email"`
}

func nameFromUserPayload(payload string) string {
	if payload == "" {
		return ""
	}
	var u appleUserPayload
	if err := json.Unmarshal([]byte(payload), &u); err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(u.Name.FirstName) + " " + strings.TrimSpace(u.Name.LastName))
}

// boolishClaim handles Apple's habit of encoding booleans as the strings
// "true" and "false" in id_token claims.
func boolishClaim(claims jwt.MapClaims, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
