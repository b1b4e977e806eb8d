package voiceauth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/NeechLog/voiceauth/internal/flow"
	"github.com/NeechLog/voiceauth/pkg/authconfig"
	"github.com/NeechLog/voiceauth/pkg/oauth"
	"github.com/NeechLog/voiceauth/pkg/statetoken"
)

// handleConfig exposes the public (secret-free) client configuration for a
// provider and platform, so native clients can bootstrap their own
// authorization leg.
func (s *Service) handleConfig(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	platform := platformParam(r)

	cfg, err := s.configs.Get(provider, platform)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: cfg.Public()})
}

type stateResponse struct {
	State            string `json:"state"`
	AuthorizationURL string `json:"authorization_url"`
	ExpiresIn        int    `json:"expires_in"`
}

// handleState mints a state token for a new authentication attempt. The
// opaque state ID goes back in the JSON body; the signed token only ever
// travels in an HttpOnly cookie. Clients running their own authorization leg
// may post a code_verifier, which is stored for the callback exchange.
func (s *Service) handleState(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	platform := platformParam(r)
	verifier := r.FormValue("code_verifier")
	returnURL := sanitizeReturnURL(r.FormValue("return_url"))

	state, err := s.flow.CreateState(provider, platform, verifier, returnURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setCookie(w, r, stateCookieName(provider), state.Token, state.ExpiresIn)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: stateResponse{
		State:            state.ID,
		AuthorizationURL: state.AuthURL,
		ExpiresIn:        state.ExpiresIn,
	}})
}

// handleCallback completes the provider round trip. Registered for both GET
// and POST: Google redirects, Apple form-posts. The state cookie is deleted
// before anything else so the signed token cannot be replayed from the same
// browser regardless of outcome.
func (s *Service) handleCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	if err := r.ParseForm(); err != nil {
		s.respondCallbackError(w, r, platformParam(r), flow.ErrMalformedCallback)
		return
	}

	cookieName := stateCookieName(provider)
	var stateToken string
	if ck, err := r.Cookie(cookieName); err == nil {
		stateToken = ck.Value
	}
	s.delCookie(w, r, cookieName)

	res, err := s.flow.HandleCallback(r.Context(), flow.CallbackRequest{
		Provider:    provider,
		Code:        r.FormValue("code"),
		StateID:     r.FormValue("state"),
		ErrorParam:  r.FormValue("error"),
		UserPayload: r.FormValue("user"),
		StateToken:  stateToken,
		Client:      s.extractor(r),
	})
	if err != nil {
		s.respondCallbackError(w, r, platformParam(r), err)
		return
	}

	// Mobile platforms get a JSON envelope; web gets the result page.
	if isMobilePlatform(res.Platform) {
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: exchangeData{
			UserInfo:  res.User,
			Token:     res.SessionToken,
			Provider:  res.Provider,
			Timestamp: time.Now().UTC(),
		}})
		return
	}
	s.renderCallbackResult(w, r, res)
}

// respondCallbackError picks the error surface by platform. The platform is
// best effort on failures: the signed token that names it may be the very
// thing that failed to verify.
func (s *Service) respondCallbackError(w http.ResponseWriter, r *http.Request, platform string, err error) {
	if isMobilePlatform(platform) {
		s.writeError(w, r, err)
		return
	}
	s.renderCallbackError(w, r, err)
}

type exchangeRequest struct {
	Code        string `json:"code"`
	Platform    string `json:"platform"`
	RedirectURI string `json:"redirect_uri"`
	Verifier    string `json:"code_verifier"`
}

type exchangeData struct {
	UserInfo  *oauth.UserInfo `json:"user_info"`
	Token     string          `json:"token,omitempty"`
	Provider  string          `json:"provider"`
	Timestamp time.Time       `json:"timestamp"`
}

// handleExchange is the direct exchange path for native clients that ran
// the authorization leg themselves and hold their own PKCE verifier.
func (s *Service) handleExchange(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, flow.ErrMalformedCallback)
		return
	}
	platform := normalizePlatform(req.Platform)

	res, err := s.flow.Exchange(r.Context(), provider, platform, req.Code, req.Verifier, req.RedirectURI, s.extractor(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: exchangeData{
		UserInfo:  res.User,
		Token:     res.SessionToken,
		Provider:  res.Provider,
		Timestamp: time.Now().UTC(),
	}})
}

// classifyError maps flow errors onto an HTTP status, a stable machine code
// and a user-safe message. Every state validation failure shares one user
// message; the distinct cause only reaches the logs.
func classifyError(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, authconfig.ErrNotFound):
		return http.StatusInternalServerError, "config_not_found", "authentication is not configured for this provider"
	case errors.Is(err, oauth.ErrUnsupportedProvider):
		return http.StatusNotFound, "unsupported_provider", "unknown authentication provider"
	case errors.Is(err, flow.ErrProviderDenied):
		return http.StatusBadRequest, "provider_denied", "authentication was cancelled or denied"
	case errors.Is(err, flow.ErrMalformedCallback):
		return http.StatusBadRequest, "malformed_request", "invalid authentication request"
	case errors.Is(err, flow.ErrMissingStateCookie),
		errors.Is(err, statetoken.ErrExpired),
		errors.Is(err, statetoken.ErrMismatch),
		errors.Is(err, statetoken.ErrSignature),
		errors.Is(err, statetoken.ErrMalformed):
		return http.StatusBadRequest, "invalid_state", "authentication session is invalid or has expired"
	case errors.Is(err, oauth.ErrExchangeFailed):
		return http.StatusBadGateway, "exchange_failed", "authentication provider is unavailable"
	default:
		return http.StatusInternalServerError, "internal_error", "authentication failed"
	}
}

// writeError responds with the JSON error envelope used by the API
// endpoints (config, state, exchange).
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classifyError(err)
	s.logError(r, err, status, code)
	writeJSON(w, status, envelope{Success: false, Error: &apiError{Code: code, Message: message}})
}

func (s *Service) logError(r *http.Request, err error, status int, code string) {
	attrs := []any{
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("code", code),
		slog.Any("error", err),
	}
	if id := requestIDFromContext(r.Context()); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("authentication request failed", attrs...)
		return
	}
	s.log.Warn("authentication request rejected", attrs...)
}

func platformParam(r *http.Request) string {
	return normalizePlatform(r.FormValue("platform"))
}

func isMobilePlatform(platform string) bool {
	return platform == "ios" || platform == "android"
}

func normalizePlatform(platform string) string {
	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform == "" {
		return "web"
	}
	return platform
}

// sanitizeReturnURL keeps return destinations on-site. Absolute URLs and
// scheme-relative URLs are dropped. A leading "/\" is rejected too since
// browsers normalize backslashes to slashes when following the redirect.
func sanitizeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") ||
		strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, `/\`) {
		return ""
	}
	return raw
}
