package health

import (
	"context"
	"log/slog"
	"time"
)

const defaultTimeout = 5 * time.Second

// Probe outcome strings, stable for machine consumers.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc probes one dependency. A nil error means ready.
type CheckFunc func(ctx context.Context) error

// Checks maps a dependency name to its probe.
type Checks map[string]CheckFunc

// Report aggregates the outcome of one readiness evaluation.
type Report struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of a single probe.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Healthy reports whether every probe passed.
func (r *Report) Healthy() bool {
	return r.Status == StatusHealthy
}

type settings struct {
	timeout time.Duration
	log     *slog.Logger
}

// Option adjusts probe evaluation.
type Option func(*settings)

// WithTimeout bounds one combined probe run. Default 5s.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger used when a probe fails.
func WithLogger(log *slog.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}

// Evaluate runs every probe concurrently under a shared deadline and
// aggregates the outcomes. A probe blocking past the deadline is reported
// with its context error.
func (c Checks) Evaluate(ctx context.Context, opts ...Option) *Report {
	report := &Report{Status: StatusHealthy}
	if len(c) == 0 {
		return report
	}

	cfg := settings{timeout: defaultTimeout, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	type outcome struct {
		name string
		err  error
	}
	results := make(chan outcome, len(c))
	for name, probe := range c {
		go func(name string, probe CheckFunc) {
			results <- outcome{name: name, err: probe(ctx)}
		}(name, probe)
	}

	report.Checks = make(map[string]CheckResult, len(c))
	for range c {
		out := <-results
		res := CheckResult{Status: StatusHealthy}
		if out.err != nil {
			res = CheckResult{Status: StatusUnhealthy, Error: out.err.Error()}
			report.Status = StatusUnhealthy
			cfg.log.WarnContext(ctx, "readiness probe failed",
				slog.String("check", out.name),
				slog.Any("error", out.err),
			)
		}
		report.Checks[out.name] = res
	}
	return report
}
