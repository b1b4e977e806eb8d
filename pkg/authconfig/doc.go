// Package authconfig loads and indexes per-(provider, platform) OAuth
// credentials from a directory of config files.
//
// Each file configures one pair and is named {provider}_{platform} with a
// .env or .yaml extension, e.g. google_web.env, apple_ios.yaml. Recognized
// fields: client_id, client_secret, web_client_id, auth_uri, token_uri,
// redirect_uri, scope, and the Apple-specific team_id, key_id,
// auth_key_path, plus deep_link_scheme for mobile redirects. Well-known
// providers get default authorization/token endpoints when the file omits
// them.
//
// Loading is tolerant: a malformed or incomplete file is logged and skipped
// so one broken provider never disables the others. Lookups are lock-free;
// Reload builds a fresh map and swaps it atomically.
package authconfig
