package oauth

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedProvider is returned when no adapter is registered
	// under the requested provider name.
	ErrUnsupportedProvider = errors.New("oauth: unsupported provider")

	// ErrExchangeFailed is returned when the provider's token endpoint
	// rejects the authorization code exchange.
	ErrExchangeFailed = errors.New("oauth: code exchange failed")

	// ErrFetchFailed is returned when fetching data from the OAuth provider fails.
	ErrFetchFailed = errors.New("oauth: failed to fetch from provider")

	// ErrDecodeFailed is returned when decoding the OAuth provider response fails.
	ErrDecodeFailed = errors.New("oauth: failed to decode response")

	// ErrMissingClientSecret is returned when a provider cannot assemble
	// its client credentials from the supplied configuration.
	ErrMissingClientSecret = errors.New("oauth: missing client secret")
)

// ExchangeError carries the upstream status of a failed code exchange.
// The upstream response body is never included: provider error payloads can
// echo request parameters.
type ExchangeError struct {
	Provider   string
	StatusCode int // upstream HTTP status, 0 when the request never completed
	err        error
}

func (e *ExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("oauth: %s code exchange failed with status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("oauth: %s code exchange failed", e.Provider)
}

func (e *ExchangeError) Unwrap() error { return e.err }

func (e *ExchangeError) Is(target error) bool { return target == ErrExchangeFailed }
