package voiceauth

import (
	"net"
	"net/http"
	"strings"

	"github.com/NeechLog/voiceauth/pkg/oauth"
)

// stateCookieName returns the per-provider cookie holding the signed state
// token, e.g. "google_oauth_state".
func stateCookieName(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider)) + "_oauth_state"
}

func (s *Service) defaultCookieGenerator(w http.ResponseWriter, _ *http.Request, name, value string, maxAge int) {
	http.SetCookie(w, s.stateCookie(name, value, maxAge))
}

func (s *Service) defaultCookieRemover(w http.ResponseWriter, _ *http.Request, name string) {
	http.SetCookie(w, s.stateCookie(name, "", -1))
}

func (s *Service) stateCookie(name, value string, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	secure := s.cfg.IsProduction()

	// Apple delivers the callback as a cross-site POST; Lax cookies are
	// withheld on those, and None requires Secure.
	if strings.HasPrefix(name, oauth.AppleProviderName+"_") {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}

// defaultClientInfoExtractor honors the first X-Forwarded-For hop, falling
// back to the socket address.
func defaultClientInfoExtractor(r *http.Request) ClientInfo {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		ip, _, _ = strings.Cut(ip, ",")
		ip = strings.TrimSpace(ip)
	} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	} else {
		ip = r.RemoteAddr
	}

	return ClientInfo{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}
