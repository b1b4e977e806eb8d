// Package flow implements the transport-agnostic authentication flow:
// state creation, callback validation, authorization code exchange and
// post-exchange completion.
//
// The Controller is deliberately unaware of HTTP. The handler layer decodes
// requests into CallbackRequest values and renders Result values. State token
// verification, provider dispatch, session token minting and the storage
// callback all live here.
package flow
