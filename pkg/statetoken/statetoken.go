package statetoken

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of a state token unless overridden.
const DefaultTTL = 10 * time.Minute

const signingAlg = "HS256"

// Payload is the verified content of a state token.
type Payload struct {
	Nonce     string
	Provider  string
	Platform  string
	Verifier  string // PKCE code verifier, empty if the client kept it
	ReturnURL string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// claims is the JWT wire form of Payload.
type claims struct {
	Nonce     string `json:"state"`
	Provider  string `json:"provider"`
	Platform  string `json:"platform"`
	Verifier  string `json:"cv,omitempty"`
	ReturnURL string `json:"ret,omitempty"`
	jwt.RegisteredClaims
}

// Codec creates and verifies signed state tokens. The token is an HS256 JWT
// carrying the PKCE verifier and return destination; the nonce travels
// separately through the identity provider as the OAuth state parameter.
type Codec struct {
	secret  []byte
	ttl     time.Duration
	timeNow func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithTimeFunc overrides the clock. Intended for tests.
func WithTimeFunc(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.timeNow = now
		}
	}
}

// New creates a Codec signing with the given secret.
// The secret must be at least 32 bytes.
func New(secret string, opts ...Option) (*Codec, error) {
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}

	c := &Codec{
		secret:  []byte(secret),
		ttl:     DefaultTTL,
		timeNow: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode issues a fresh state token. It returns the opaque state ID that is
// echoed through the identity provider, and the signed token destined for an
// HttpOnly cookie. The PKCE verifier only ever appears inside the signed
// token, never in the state ID.
func (c *Codec) Encode(provider, platform, verifier, returnURL string) (stateID, signed string, err error) {
	stateID, err = newNonce()
	if err != nil {
		return "", "", fmt.Errorf("statetoken: generate nonce: %w", err)
	}

	now := c.timeNow()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Nonce:     stateID,
		Provider:  provider,
		Platform:  platform,
		Verifier:  verifier,
		ReturnURL: returnURL,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})

	signed, err = tok.SignedString(c.secret)
	if err != nil {
		return "", "", fmt.Errorf("statetoken: sign: %w", err)
	}
	return stateID, signed, nil
}

// Decode verifies a signed state token against the state ID received from
// the identity provider. The effective expiry is recomputed from the issue
// time and the codec's TTL, so a forged or oversized exp claim cannot extend
// a token's life.
func (c *Codec) Decode(signed, receivedStateID string) (*Payload, error) {
	if signed == "" || strings.Count(signed, ".") != 2 {
		return nil, ErrMalformed
	}

	var cl claims
	_, err := jwt.ParseWithClaims(signed, &cl,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{signingAlg}),
		jwt.WithTimeFunc(c.timeNow),
		jwt.WithIssuedAt(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrMalformed
	default:
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if cl.IssuedAt == nil || cl.ExpiresAt == nil {
		return nil, ErrMalformed
	}
	// Server-side TTL enforcement, independent of the embedded exp claim.
	if c.timeNow().After(cl.IssuedAt.Time.Add(c.ttl)) {
		return nil, ErrExpired
	}
	if cl.Nonce == "" || cl.Nonce != receivedStateID {
		return nil, ErrMismatch
	}

	return &Payload{
		Nonce:     cl.Nonce,
		Provider:  cl.Provider,
		Platform:  cl.Platform,
		Verifier:  cl.Verifier,
		ReturnURL: cl.ReturnURL,
		IssuedAt:  cl.IssuedAt.Time,
		ExpiresAt: cl.ExpiresAt.Time,
	}, nil
}

// newNonce returns 32 random bytes in base64url form (43 characters).
func newNonce() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
