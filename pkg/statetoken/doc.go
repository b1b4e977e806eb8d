// Package statetoken implements the signed state tokens that make the OAuth
// flow stateless: instead of a server-side session, each login attempt is
// tracked by an HS256-signed JWT set as an HttpOnly cookie, paired with a
// high-entropy state ID that round-trips through the identity provider.
//
// The token carries the PKCE code verifier and the return destination, so no
// instance affinity or shared cache is needed: any server holding the
// signing secret can complete a callback.
//
// # Usage
//
//	codec, err := statetoken.New(os.Getenv("STATE_SECRET_KEY"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Issuing: stateID goes to the client, signed goes into a cookie.
//	stateID, signed, err := codec.Encode("google", "web", verifier, "/app")
//
//	// Verifying on callback:
//	payload, err := codec.Decode(cookieValue, r.FormValue("state"))
//	switch {
//	case errors.Is(err, statetoken.ErrExpired):    // login took too long
//	case errors.Is(err, statetoken.ErrMismatch):   // replay or wrong flow
//	case errors.Is(err, statetoken.ErrSignature):  // tampering
//	}
//
// Expiry is always computed against server time from the issue timestamp and
// the codec's TTL; client-supplied claims cannot extend a token's life.
package statetoken
