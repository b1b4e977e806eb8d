package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// LivenessHandler answers process liveness probes. It always succeeds: if
// the handler runs, the process is alive.
func LivenessHandler() http.HandlerFunc {
	alive := &Report{Status: StatusHealthy}
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusOK, alive)
	}
}

// ReadinessHandler answers readiness probes by evaluating the given checks
// on every request. Any failing check yields 503 so load balancers stop
// routing traffic to the instance.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := checks.Evaluate(r.Context(), opts...)
		status := http.StatusOK
		if !report.Healthy() {
			status = http.StatusServiceUnavailable
		}
		respond(w, r, status, report)
	}
}

// respond writes the report as JSON when asked for, and as the short
// plain-text form probes expect otherwise. ?format=json helps debugging
// from a browser.
func respond(w http.ResponseWriter, r *http.Request, status int, report *Report) {
	wantsJSON := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		r.URL.Query().Get("format") == "json"
	if wantsJSON {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(report)
		return
	}

	w.WriteHeader(status)
	if report.Healthy() {
		_, _ = w.Write([]byte("OK"))
		return
	}
	_, _ = w.Write([]byte("Service Unavailable"))
}
