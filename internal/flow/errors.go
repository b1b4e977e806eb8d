package flow

import "errors"

var (
	// ErrMalformedCallback is returned when a provider callback is missing
	// the authorization code or state parameter.
	ErrMalformedCallback = errors.New("flow: malformed callback request")

	// ErrMissingStateCookie is returned when the signed state cookie is
	// absent from the callback request.
	ErrMissingStateCookie = errors.New("flow: missing state cookie")

	// ErrProviderDenied is returned when the provider reports an error in
	// the callback instead of an authorization code, typically because the
	// user cancelled the sign-in.
	ErrProviderDenied = errors.New("flow: provider reported an error")
)
