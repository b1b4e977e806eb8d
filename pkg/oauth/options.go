package oauth

import "net/http"

// Option configures an OAuth provider.
type Option func(*options)

type options struct {
	httpClient  *http.Client
	userInfoURL string
}

// WithHTTPClient sets a custom HTTP client for OAuth requests.
// This is useful for testing with httptest servers or injecting
// custom transports (e.g., logging, retries).
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithUserInfoURL overrides the userinfo endpoint for providers that have
// one. Primarily useful for testing against httptest servers.
func WithUserInfoURL(rawURL string) Option {
	return func(o *options) {
		o.userInfoURL = rawURL
	}
}
