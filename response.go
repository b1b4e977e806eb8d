package voiceauth

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/NeechLog/voiceauth/internal/flow"
	"github.com/NeechLog/voiceauth/pkg/oauth"
)

//go:embed templates/auth_result.html
var templatesFS embed.FS

var authResultTmpl = template.Must(template.ParseFS(templatesFS, "templates/auth_result.html"))

// envelope is the uniform JSON response shape of the API endpoints.
type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// callbackPayload is embedded into the result page and consumed by the
// page script: forwarded to window.opener for popup flows, or used to
// follow the deep link or return URL.
type callbackPayload struct {
	UserInfo       *oauth.UserInfo `json:"user_info"`
	Token          string          `json:"token,omitempty"`
	Provider       string          `json:"provider"`
	Platform       string          `json:"platform"`
	ReturnURL      string          `json:"return_url,omitempty"`
	DeepLink       string          `json:"deep_link,omitempty"`
	MinimalProfile bool            `json:"minimal_profile,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

type authResultData struct {
	Success bool
	Message string
	Payload template.JS
}

func (s *Service) renderCallbackResult(w http.ResponseWriter, r *http.Request, res *flow.Result) {
	payload := callbackPayload{
		UserInfo:       res.User,
		Token:          res.SessionToken,
		Provider:       res.Provider,
		Platform:       res.Platform,
		ReturnURL:      res.ReturnURL,
		DeepLink:       s.deepLink(res),
		MinimalProfile: res.MinimalProfile,
		Timestamp:      time.Now().UTC(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		s.renderCallbackError(w, r, err)
		return
	}

	s.renderResultPage(w, http.StatusOK, authResultData{
		Success: true,
		Message: "Authentication successful. You can close this window.",
		Payload: template.JS(raw),
	})
}

func (s *Service) renderCallbackError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classifyError(err)
	s.logError(r, err, status, code)
	s.renderResultPage(w, status, authResultData{
		Success: false,
		Message: message,
		Payload: template.JS("null"),
	})
}

func (s *Service) renderResultPage(w http.ResponseWriter, status int, data authResultData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := authResultTmpl.Execute(w, data); err != nil {
		s.log.Error("render auth result page", "error", err)
	}
}

// deepLink builds the native hand-off URL for mobile platforms, e.g.
// "voiceapp://auth/callback?token=...". Empty for web or when the platform
// config declares no scheme.
func (s *Service) deepLink(res *flow.Result) string {
	if res.Platform == "web" {
		return ""
	}
	cfg, err := s.configs.Get(res.Provider, res.Platform)
	if err != nil || cfg.DeepLinkScheme == "" {
		return ""
	}

	q := url.Values{}
	q.Set("provider", res.Provider)
	if res.SessionToken != "" {
		q.Set("token", res.SessionToken)
	}
	return cfg.DeepLinkScheme + "://auth/callback?" + q.Encode()
}
