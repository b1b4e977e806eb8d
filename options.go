package voiceauth

import (
	"log/slog"
	"net/http"

	"github.com/NeechLog/voiceauth/pkg/oauth"
)

// Option configures the Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	log             *slog.Logger
	tokenGenerator  TokenGenerator
	storageCallback StorageCallback
	extractor       ClientInfoExtractor
	setCookie       CookieGenerator
	delCookie       CookieRemover
	oauthOpts       []oauth.Option
	providers       []oauth.Provider
}

func defaultOptions() serviceOptions {
	return serviceOptions{}
}

// WithLogger sets the structured logger used across the service.
func WithLogger(log *slog.Logger) Option {
	return func(o *serviceOptions) {
		o.log = log
	}
}

// WithTokenGenerator injects the host application's session token minting.
// Without it, responses carry no session token.
func WithTokenGenerator(fn TokenGenerator) Option {
	return func(o *serviceOptions) {
		o.tokenGenerator = fn
	}
}

// WithStorageCallback injects the persistence hook invoked after each
// successful authentication. Failures are logged, never surfaced to users.
func WithStorageCallback(fn StorageCallback) Option {
	return func(o *serviceOptions) {
		o.storageCallback = fn
	}
}

// WithClientInfoExtractor overrides how client audit data is derived from
// requests, e.g. to honor a trusted proxy header.
func WithClientInfoExtractor(fn ClientInfoExtractor) Option {
	return func(o *serviceOptions) {
		o.extractor = fn
	}
}

// WithCookieGenerator overrides state cookie writing.
func WithCookieGenerator(fn CookieGenerator) Option {
	return func(o *serviceOptions) {
		o.setCookie = fn
	}
}

// WithCookieRemover overrides state cookie deletion.
func WithCookieRemover(fn CookieRemover) Option {
	return func(o *serviceOptions) {
		o.delCookie = fn
	}
}

// WithHTTPClient sets the HTTP client used for provider requests.
// Useful for testing and custom transports.
func WithHTTPClient(client *http.Client) Option {
	return func(o *serviceOptions) {
		o.oauthOpts = append(o.oauthOpts, oauth.WithHTTPClient(client))
	}
}

// WithProvider registers an additional provider adapter, or replaces a
// built-in one.
func WithProvider(p oauth.Provider) Option {
	return func(o *serviceOptions) {
		o.providers = append(o.providers, p)
	}
}
