// Package health provides the liveness and readiness endpoints of the
// authentication service.
//
// [LivenessHandler] always succeeds. [ReadinessHandler] evaluates a set of
// named [Checks] per request, e.g. whether provider credentials loaded:
//
//	r.Get("/healthz", health.LivenessHandler())
//	r.Get("/readyz", health.ReadinessHandler(health.Checks{
//	    "auth_configs": configsLoaded,
//	}, health.WithLogger(log)))
//
// Responses are plain text for probe compatibility; a client sending
// Accept: application/json or ?format=json gets the full [Report]:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "auth_configs": {"status": "unhealthy", "error": "no provider configurations loaded"}
//	  }
//	}
//
// Probes run concurrently under a shared deadline (WithTimeout, default 5s).
// Any failure maps to 503 Service Unavailable.
package health
