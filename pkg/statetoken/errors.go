package statetoken

import "errors"

var (
	// ErrWeakSecret is returned when the signing secret is shorter than 32 bytes.
	ErrWeakSecret = errors.New("statetoken: secret must be 32+ bytes")

	// ErrExpired is returned when a token is verified after its TTL has elapsed.
	ErrExpired = errors.New("statetoken: expired")

	// ErrMismatch is returned when the received state ID does not match the
	// nonce embedded in the token. Seen on replays after the cookie was
	// cleared, or when a callback arrives for a different flow.
	ErrMismatch = errors.New("statetoken: state mismatch")

	// ErrSignature is returned when the token signature does not verify.
	ErrSignature = errors.New("statetoken: invalid signature")

	// ErrMalformed is returned when the token is not a parseable JWT.
	ErrMalformed = errors.New("statetoken: malformed token")
)
