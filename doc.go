// Package voiceauth is a stateless multi-provider authentication core for
// applications with web, iOS and Android clients.
//
// The service implements the OAuth2 authorization code flow with PKCE for
// Google Sign-In and Sign in with Apple. It keeps no server-side session
// state: everything a callback needs to be validated (CSRF nonce, PKCE
// verifier, provider, platform, return destination) travels inside a signed
// HttpOnly cookie minted at state creation.
//
// The package is designed to be embedded. The host application owns users,
// sessions and storage, and injects those concerns:
//
//	svc, err := voiceauth.New(cfg,
//		voiceauth.WithLogger(log),
//		voiceauth.WithTokenGenerator(mintSessionJWT),
//		voiceauth.WithStorageCallback(saveAuthResult),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	mux.Mount("/", svc.Router())
//
// Provider credentials live in one file per (provider, platform) pair under
// AUTH_CONFIG_DIR, named like google_web.env or apple_ios.yaml, and can be
// reloaded at runtime with Reload.
//
// Endpoints mounted by Router:
//
//	GET  /auth/{provider}/config    public client configuration
//	POST /auth/{provider}/state     mint state + PKCE verifier
//	GET  /auth/{provider}/callback  provider redirect (Google)
//	POST /auth/{provider}/callback  provider form post (Apple)
//	POST /auth/{provider}/exchange  direct code exchange for native clients
package voiceauth
