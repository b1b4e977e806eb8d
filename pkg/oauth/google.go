package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/NeechLog/voiceauth/pkg/authconfig"
)

const (
	// GoogleProviderName is the identifier for the Google OAuth provider.
	GoogleProviderName = "google"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleProvider implements Provider for Google Sign-In.
type GoogleProvider struct {
	httpClient  *http.Client
	userInfoURL string
}

// NewGoogleProvider creates a new Google OAuth provider.
func NewGoogleProvider(opts ...Option) *GoogleProvider {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	userInfoURL := o.userInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfoURL
	}

	return &GoogleProvider{
		httpClient:  o.httpClient,
		userInfoURL: userInfoURL,
	}
}

// Name returns the provider identifier.
func (p *GoogleProvider) Name() string {
	return GoogleProviderName
}

// AuthCodeURL generates the authorization URL. Offline access and forced
// consent are always requested so that Google issues a refresh token.
func (p *GoogleProvider) AuthCodeURL(cfg *authconfig.Config, state, challenge string) string {
	opts := []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	}
	if challenge != "" {
		opts = append(opts,
			oauth2.SetAuthURLParam("code_challenge", challenge),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		)
	}
	return oauthConfig(cfg, "").AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens.
func (p *GoogleProvider) Exchange(ctx context.Context, cfg *authconfig.Config, code, verifier, redirectURI string) (*Token, error) {
	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	ctx = p.contextWithHTTPClient(ctx)
	tok, err := oauthConfig(cfg, redirectURI).Exchange(ctx, code, opts...)
	if err != nil {
		return nil, wrapExchangeError(GoogleProviderName, err)
	}
	return normalizeToken(tok), nil
}

// UserInfo extracts user information from the token response. Claims embedded
// in the id_token are preferred; the token arrived over a direct TLS exchange
// with Google, so its claims are trusted without signature verification. The
// userinfo endpoint is only consulted when no id_token is present.
func (p *GoogleProvider) UserInfo(ctx context.Context, cfg *authconfig.Config, tok *Token) (*UserInfo, error) {
	if tok.IDToken != "" {
		if info, err := p.userInfoFromIDToken(tok.IDToken); err == nil {
			return info, nil
		}
	}
	return p.fetchUserInfo(ctx, tok)
}

func (p *GoogleProvider) userInfoFromIDToken(idToken string) (*UserInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("parse id_token: %w", err))
	}

	info := &UserInfo{
		ID:       stringClaim(claims, "sub"),
		Email:    stringClaim(claims, "email"),
		Name:     stringClaim(claims, "name"),
		Picture:  stringClaim(claims, "picture"),
		Provider: GoogleProviderName,
		Raw:      claims,
	}
	if v, ok := claims["email_verified"].(bool); ok {
		info.EmailVerified = v
	}
	if info.IsEmpty() {
		return nil, errors.Join(ErrDecodeFailed, errors.New("id_token carries no identity claims"))
	}
	return info, nil
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, tok *Token) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("build userinfo request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	client := p.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("fetch userinfo: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("userinfo request failed: status=%d", resp.StatusCode))
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode userinfo: %w", err))
	}

	info := &UserInfo{
		ID:       stringField(raw, "id"),
		Email:    stringField(raw, "email"),
		Name:     stringField(raw, "name"),
		Picture:  stringField(raw, "picture"),
		Provider: GoogleProviderName,
		Raw:      raw,
	}
	if info.ID == "" {
		info.ID = stringField(raw, "sub")
	}
	if v, ok := raw["verified_email"].(bool); ok {
		info.EmailVerified = v
	}
	return info, nil
}

func (p *GoogleProvider) contextWithHTTPClient(ctx context.Context) context.Context {
	if p.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}
	return ctx
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}
