package oauth

import "golang.org/x/oauth2"

// NewVerifier generates a cryptographically random PKCE code verifier.
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// ChallengeS256 derives the S256 code challenge for a verifier.
func ChallengeS256(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}
