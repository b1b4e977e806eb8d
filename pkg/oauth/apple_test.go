package oauth_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/NeechLog/voiceauth/pkg/authconfig"
	"github.com/NeechLog/voiceauth/pkg/oauth"
)

var _ oauth.Provider = (*oauth.AppleProvider)(nil)

// writeAppleKey generates a P-256 key and writes it as a PKCS#8 PEM file,
// the format Apple ships .p8 files in. Returns the path and the public key.
func writeAppleKey(t *testing.T) (string, *ecdsa.PublicKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "AuthKey_TESTKEY123.p8")
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	require.NoError(t, os.WriteFile(path, pemBytes, 0o600))

	return path, &key.PublicKey
}

func appleTestConfig(tokenURL, keyPath string) *authconfig.Config {
	return &authconfig.Config{
		Provider:    "apple",
		Platform:    "ios",
		ClientID:    "com.example.voiceapp",
		AuthURI:     "https://appleid.apple.com/auth/authorize",
		TokenURI:    tokenURL,
		RedirectURI: "https://example.com/auth/apple/callback",
		Scope:       "name email",
		TeamID:      "TEAM123456",
		KeyID:       "TESTKEY123",
		AuthKeyPath: keyPath,
	}
}

func TestAppleProvider_Name(t *testing.T) {
	t.Parallel()
	require.Equal(t, "apple", oauth.NewAppleProvider().Name())
}

func TestAppleProvider_AuthCodeURL(t *testing.T) {
	t.Parallel()

	p := oauth.NewAppleProvider()
	cfg := appleTestConfig("https://appleid.apple.com/auth/token", "")

	t.Run("uses form_post response mode", func(t *testing.T) {
		t.Parallel()
		u := p.AuthCodeURL(cfg, "test-state", "")
		require.Contains(t, u, "response_mode=form_post")
		require.Contains(t, u, "response_type=code")
		require.Contains(t, u, "state=test-state")
		require.Contains(t, u, "client_id=com.example.voiceapp")
	})

	t.Run("includes PKCE challenge when provided", func(t *testing.T) {
		t.Parallel()
		u := p.AuthCodeURL(cfg, "state", "test-challenge")
		require.Contains(t, u, "code_challenge=test-challenge")
		require.Contains(t, u, "code_challenge_method=S256")
	})
}

func TestAppleProvider_ClientSecret(t *testing.T) {
	t.Parallel()

	t.Run("mints verifiable ES256 JWT", func(t *testing.T) {
		t.Parallel()

		keyPath, pubKey := writeAppleKey(t)
		p := oauth.NewAppleProvider()
		cfg := appleTestConfig("", keyPath)

		secret, err := p.ClientSecret(cfg)
		require.NoError(t, err)

		claims := jwt.RegisteredClaims{}
		tok, err := jwt.ParseWithClaims(secret, &claims, func(tok *jwt.Token) (any, error) {
			return pubKey, nil
		}, jwt.WithValidMethods([]string{"ES256"}))
		require.NoError(t, err)
		require.True(t, tok.Valid)

		require.Equal(t, "TESTKEY123", tok.Header["kid"])
		require.Equal(t, "TEAM123456", claims.Issuer)
		require.Equal(t, "com.example.voiceapp", claims.Subject)
		require.Contains(t, claims.Audience, "https://appleid.apple.com")
		require.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("incomplete credentials", func(t *testing.T) {
		t.Parallel()

		cfg := appleTestConfig("", "")
		cfg.TeamID = ""
		_, err := oauth.NewAppleProvider().ClientSecret(cfg)
		require.ErrorIs(t, err, oauth.ErrMissingClientSecret)
	})

	t.Run("missing key file", func(t *testing.T) {
		t.Parallel()

		cfg := appleTestConfig("", filepath.Join(t.TempDir(), "nope.p8"))
		_, err := oauth.NewAppleProvider().ClientSecret(cfg)
		require.ErrorIs(t, err, oauth.ErrMissingClientSecret)
	})
}

func TestAppleProvider_Exchange(t *testing.T) {
	t.Parallel()

	t.Run("sends minted client secret", func(t *testing.T) {
		t.Parallel()

		keyPath, pubKey := writeAppleKey(t)

		var receivedSecret, receivedCode string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			receivedSecret = r.FormValue("client_secret")
			receivedCode = r.FormValue("code")
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "apple-access-token",
				"token_type":    "Bearer",
				"expires_in":    3600,
				"refresh_token": "apple-refresh-token",
			})
		}))
		defer ts.Close()

		p := oauth.NewAppleProvider()
		tok, err := p.Exchange(context.Background(), appleTestConfig(ts.URL, keyPath), "test-code", "", "")
		require.NoError(t, err)
		require.Equal(t, "apple-access-token", tok.AccessToken)
		require.Equal(t, "test-code", receivedCode)

		// The client_secret form value must be a JWT signed with our key.
		_, err = jwt.Parse(receivedSecret, func(tok *jwt.Token) (any, error) {
			return pubKey, nil
		}, jwt.WithValidMethods([]string{"ES256"}))
		require.NoError(t, err)
	})

	t.Run("upstream rejection reports status", func(t *testing.T) {
		t.Parallel()

		keyPath, _ := writeAppleKey(t)
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
		}))
		defer ts.Close()

		p := oauth.NewAppleProvider()
		_, err := p.Exchange(context.Background(), appleTestConfig(ts.URL, keyPath), "bad-code", "", "")
		require.ErrorIs(t, err, oauth.ErrExchangeFailed)

		var exchangeErr *oauth.ExchangeError
		require.ErrorAs(t, err, &exchangeErr)
		require.Equal(t, http.StatusBadRequest, exchangeErr.StatusCode)
	})
}

func TestAppleProvider_UserInfo(t *testing.T) {
	t.Parallel()

	p := oauth.NewAppleProvider()
	cfg := appleTestConfig("", "")

	t.Run("extracts sub and email from id_token", func(t *testing.T) {
		t.Parallel()

		tok := &oauth.Token{
			IDToken: testIDToken(t, jwt.MapClaims{
				"sub":              "001234.abcdef.5678",
				"email":            "user@privaterelay.appleid.com",
				"email_verified":   "true",
				"is_private_email": "true",
			}),
		}

		user, err := p.UserInfo(context.Background(), cfg, tok)
		require.NoError(t, err)
		require.Equal(t, "001234.abcdef.5678", user.ID)
		require.Equal(t, "user@privaterelay.appleid.com", user.Email)
		require.True(t, user.EmailVerified)
		require.True(t, user.IsPrivateEmail)
		require.Equal(t, "apple", user.Provider)
		require.Empty(t, user.Name)
	})

	t.Run("name comes from first-authorization user payload", func(t *testing.T) {
		t.Parallel()

		tok := &oauth.Token{
			IDToken:     testIDToken(t, jwt.MapClaims{"sub": "001234.abcdef.5678"}),
			UserPayload: `{"name":{"firstName":"Jane","lastName":"Doe"},"email":"jane@example.com"}`,
		}

		user, err := p.UserInfo(context.Background(), cfg, tok)
		require.NoError(t, err)
		require.Equal(t, "Jane Doe", user.Name)
	})

	t.Run("malformed user payload ignored", func(t *testing.T) {
		t.Parallel()

		tok := &oauth.Token{
			IDToken:     testIDToken(t, jwt.MapClaims{"sub": "001234.abcdef.5678"}),
			UserPayload: "not-json",
		}

		user, err := p.UserInfo(context.Background(), cfg, tok)
		require.NoError(t, err)
		require.Empty(t, user.Name)
	})

	t.Run("empty result without id_token", func(t *testing.T) {
		t.Parallel()

		user, err := p.UserInfo(context.Background(), cfg, &oauth.Token{AccessToken: "only-access"})
		require.NoError(t, err)
		require.True(t, user.IsEmpty())
	})
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := oauth.NewRegistry()

	t.Run("built-in providers", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, []string{"apple", "google"}, r.Names())

		p, err := r.Get("google")
		require.NoError(t, err)
		require.Equal(t, "google", p.Name())
	})

	t.Run("unsupported provider", func(t *testing.T) {
		t.Parallel()
		_, err := r.Get("facebook")
		require.ErrorIs(t, err, oauth.ErrUnsupportedProvider)
	})
}
