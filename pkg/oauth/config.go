package oauth

import (
	"errors"

	"golang.org/x/oauth2"

	"github.com/NeechLog/voiceauth/pkg/authconfig"
)

// oauthConfig maps a provider credential set onto an oauth2.Config.
// redirectURI overrides the configured redirect when non-empty.
func oauthConfig(cfg *authconfig.Config, redirectURI string) *oauth2.Config {
	if redirectURI == "" {
		redirectURI = cfg.RedirectURI
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       cfg.Scopes(),
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURI,
			TokenURL: cfg.TokenURI,
		},
	}
}

// normalizeToken converts an oauth2 token into the wire-level Token shape.
func normalizeToken(tok *oauth2.Token) *Token {
	t := &Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		t.IDToken = idToken
	}
	return t
}

// wrapExchangeError converts token-endpoint failures into an ExchangeError
// that preserves the upstream HTTP status without echoing the response body.
func wrapExchangeError(provider string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &ExchangeError{
			Provider:   provider,
			StatusCode: retrieveErr.Response.StatusCode,
			err:        err,
		}
	}
	return &ExchangeError{Provider: provider, err: err}
}
