// Package logger builds the structured loggers used across the service.
//
// New returns a JSON slog.Logger writing to stdout. NewWithSentry layers a
// Sentry handler on top so errors surface as issues without a separate
// error-reporting path. Both accept context extractors that pull
// request-scoped attributes (request IDs, provider names) into every record.
//
//	log := logger.New(logger.WithLevel(slog.LevelDebug))
//
//	log = logger.NewWithSentry(logger.SentryConfig{DSN: dsn},
//		logger.WithExtractors(requestIDExtractor),
//	)
//
// NewDiscard returns a silent logger for tests and unconfigured components.
package logger
