// Package oauth provides OAuth2 authorization code flow adapters for the
// supported identity providers.
//
// This package includes a Provider interface and concrete implementations for
// Google and Apple, plus a Registry mapping provider names to adapters.
// Adapters are stateless: credentials arrive per call as *authconfig.Config,
// so a configuration reload takes effect without rebuilding providers.
//
// # Features
//
//   - Provider interface for pluggable OAuth2 implementations
//   - Google Sign-In with offline access and id_token claim extraction
//   - Sign in with Apple with per-exchange ES256 client secrets and
//     form_post callbacks
//   - PKCE helpers (NewVerifier, ChallengeS256)
//   - Functional options for custom HTTP clients (testing, custom transports)
//   - Sentinel errors with "oauth:" prefix for consistent error handling
//
// # Usage
//
//	registry := oauth.NewRegistry()
//	provider, err := registry.Get("google")
//	if err != nil {
//		// handle unsupported provider
//	}
//
//	verifier := oauth.NewVerifier()
//	url := provider.AuthCodeURL(cfg, stateID, oauth.ChallengeS256(verifier))
//
//	// Exchange code for tokens (in callback handler)
//	token, err := provider.Exchange(ctx, cfg, code, verifier, "")
//	if err != nil {
//		// handle error
//	}
//
//	user, err := provider.UserInfo(ctx, cfg, token)
//	if err != nil {
//		// handle error
//	}
//
// # Custom Providers
//
// Implement the Provider interface and register it to add support for other
// OAuth2 providers:
//
//	registry.Register(&MyProvider{})
//
// # Testing
//
// Use WithHTTPClient to inject a test server for unit testing:
//
//	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//		// mock responses
//	}))
//	defer ts.Close()
//
//	registry := oauth.NewRegistry(oauth.WithHTTPClient(ts.Client()))
//
// # Error Handling
//
// The package provides sentinel errors for specific failure modes:
//
//   - ErrUnsupportedProvider: No adapter registered under the name
//   - ErrExchangeFailed: Token endpoint rejected the code exchange
//   - ErrFetchFailed: HTTP request to provider failed
//   - ErrDecodeFailed: Failed to decode provider response
//   - ErrMissingClientSecret: Credentials incomplete for the provider
//
// Exchange failures are *ExchangeError values carrying the upstream HTTP
// status; the upstream body is never included in error messages.
//
// Use errors.Is for checking:
//
//	if errors.Is(err, oauth.ErrExchangeFailed) {
//		// respond with a bad-gateway status
//	}
//
// # Security
//
//   - Always validate the state parameter to prevent CSRF attacks
//   - Use HTTPS redirect URIs in production
//   - Store tokens securely (encrypted at rest, never in URLs)
//   - Keep signing keys and client secrets out of source control
package oauth
