package authconfig

import "errors"

var (
	// ErrNotFound is returned when no config exists for a (provider, platform)
	// pair. This is a deployment gap, not a user error.
	ErrNotFound = errors.New("authconfig: not configured")

	// ErrLoad is returned when the config directory cannot be read at all.
	// Individual malformed files are skipped, not surfaced through this error.
	ErrLoad = errors.New("authconfig: load failed")
)
