package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/NeechLog/voiceauth/pkg/authconfig"
	"github.com/NeechLog/voiceauth/pkg/oauth"
)

var _ oauth.Provider = (*oauth.GoogleProvider)(nil)

func googleTestConfig(tokenURL string) *authconfig.Config {
	return &authconfig.Config{
		Provider:     "google",
		Platform:     "web",
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		AuthURI:      "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURI:     tokenURL,
		RedirectURI:  "https://example.com/callback",
		Scope:        "openid email profile",
	}
}

// testIDToken builds a structurally valid JWT carrying the given claims.
// The signature is irrelevant: claims are read without verification.
func testIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func TestGoogleProvider_Name(t *testing.T) {
	t.Parallel()
	require.Equal(t, "google", oauth.NewGoogleProvider().Name())
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	t.Parallel()

	p := oauth.NewGoogleProvider()
	cfg := googleTestConfig("https://oauth2.googleapis.com/token")

	t.Run("includes state and redirect URI", func(t *testing.T) {
		t.Parallel()
		u := p.AuthCodeURL(cfg, "test-state", "")
		require.Contains(t, u, "state=test-state")
		require.Contains(t, u, "redirect_uri=")
		require.Contains(t, u, "example.com")
	})

	t.Run("requests offline access with forced consent", func(t *testing.T) {
		t.Parallel()
		u := p.AuthCodeURL(cfg, "state", "")
		require.Contains(t, u, "access_type=offline")
		require.Contains(t, u, "prompt=consent")
	})

	t.Run("includes PKCE challenge when provided", func(t *testing.T) {
		t.Parallel()
		verifier := oauth.NewVerifier()
		u := p.AuthCodeURL(cfg, "state", oauth.ChallengeS256(verifier))
		require.Contains(t, u, "code_challenge="+oauth.ChallengeS256(verifier))
		require.Contains(t, u, "code_challenge_method=S256")
	})

	t.Run("omits PKCE parameters when challenge empty", func(t *testing.T) {
		t.Parallel()
		u := p.AuthCodeURL(cfg, "state", "")
		require.NotContains(t, u, "code_challenge")
	})
}

func TestGoogleProvider_Exchange(t *testing.T) {
	t.Parallel()

	t.Run("successful exchange", func(t *testing.T) {
		t.Parallel()

		idToken := testIDToken(t, jwt.MapClaims{"sub": "12345", "email": "user@example.com"})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "test-code", r.FormValue("code"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "test-access-token",
				"token_type":    "Bearer",
				"expires_in":    3600,
				"refresh_token": "test-refresh-token",
				"id_token":      idToken,
			})
		}))
		defer ts.Close()

		p := oauth.NewGoogleProvider()
		tok, err := p.Exchange(context.Background(), googleTestConfig(ts.URL), "test-code", "", "")
		require.NoError(t, err)
		require.Equal(t, "test-access-token", tok.AccessToken)
		require.Equal(t, "test-refresh-token", tok.RefreshToken)
		require.Equal(t, idToken, tok.IDToken)
	})

	t.Run("sends PKCE verifier", func(t *testing.T) {
		t.Parallel()

		var receivedVerifier string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			receivedVerifier = r.FormValue("code_verifier")
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "test-token",
				"token_type":   "Bearer",
			})
		}))
		defer ts.Close()

		p := oauth.NewGoogleProvider()
		verifier := oauth.NewVerifier()
		_, err := p.Exchange(context.Background(), googleTestConfig(ts.URL), "test-code", verifier, "")
		require.NoError(t, err)
		require.Equal(t, verifier, receivedVerifier)
	})

	t.Run("custom redirect URI", func(t *testing.T) {
		t.Parallel()

		var receivedRedirectURI string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			receivedRedirectURI = r.FormValue("redirect_uri")
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "test-token",
				"token_type":   "Bearer",
			})
		}))
		defer ts.Close()

		p := oauth.NewGoogleProvider()
		_, err := p.Exchange(context.Background(), googleTestConfig(ts.URL), "test-code", "", "https://example.com/override")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/override", receivedRedirectURI)
	})

	t.Run("invalid code reports upstream status", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "Bad Request",
			})
		}))
		defer ts.Close()

		p := oauth.NewGoogleProvider()
		_, err := p.Exchange(context.Background(), googleTestConfig(ts.URL), "bad-code", "", "")
		require.ErrorIs(t, err, oauth.ErrExchangeFailed)

		var exchangeErr *oauth.ExchangeError
		require.ErrorAs(t, err, &exchangeErr)
		require.Equal(t, http.StatusBadRequest, exchangeErr.StatusCode)
		require.NotContains(t, exchangeErr.Error(), "invalid_grant")
	})
}

func TestGoogleProvider_UserInfo(t *testing.T) {
	t.Parallel()

	t.Run("prefers id_token claims", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("userinfo endpoint should not be called when id_token is present")
		}))
		defer ts.Close()

		p := oauth.NewGoogleProvider(oauth.WithUserInfoURL(ts.URL))
		tok := &oauth.Token{
			AccessToken: "test-token",
			IDToken: testIDToken(t, jwt.MapClaims{
				"sub":            "12345",
				"email":          "user@example.com",
				"email_verified": true,
				"name":           "Test User",
				"picture":        "https://example.com/photo.jpg",
				"iat":            time.Now().Unix(),
			}),
		}

		user, err := p.UserInfo(context.Background(), googleTestConfig(""), tok)
		require.NoError(t, err)
		require.Equal(t, "12345", user.ID)
		require.Equal(t, "user@example.com", user.Email)
		require.Equal(t, "Test User", user.Name)
		require.Equal(t, "https://example.com/photo.jpg", user.Picture)
		require.True(t, user.EmailVerified)
		require.Equal(t, "google", user.Provider)
	})

	t.Run("falls back to userinfo endpoint", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":             "12345",
				"email":          "user@example.com",
				"name":           "Test User",
				"verified_email": true,
			})
		}))
		defer ts.Close()

		p := oauth.NewGoogleProvider(oauth.WithUserInfoURL(ts.URL))
		user, err := p.UserInfo(context.Background(), googleTestConfig(""), &oauth.Token{AccessToken: "test-token"})
		require.NoError(t, err)
		require.Equal(t, "12345", user.ID)
		require.Equal(t, "user@example.com", user.Email)
		require.True(t, user.EmailVerified)
	})

	t.Run("non-OK status from userinfo endpoint", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer ts.Close()

		p := oauth.NewGoogleProvider(oauth.WithUserInfoURL(ts.URL))
		user, err := p.UserInfo(context.Background(), googleTestConfig(""), &oauth.Token{AccessToken: "test-token"})
		require.ErrorIs(t, err, oauth.ErrFetchFailed)
		require.Nil(t, user)
	})

	t.Run("bad JSON from userinfo endpoint", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("not-json"))
		}))
		defer ts.Close()

		p := oauth.NewGoogleProvider(oauth.WithUserInfoURL(ts.URL))
		user, err := p.UserInfo(context.Background(), googleTestConfig(""), &oauth.Token{AccessToken: "test-token"})
		require.ErrorIs(t, err, oauth.ErrDecodeFailed)
		require.Nil(t, user)
	})
}
