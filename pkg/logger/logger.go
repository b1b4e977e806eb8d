package logger

import (
	"io"
	"log/slog"
	"os"
)

// Option configures the logger.
type Option func(*options)

type options struct {
	out        io.Writer
	level      slog.Level
	extractors []ContextExtractor
}

// WithLevel sets the minimum log level. Defaults to Info.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithOutput redirects log output. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

// WithExtractors adds context extractors applied on every log call.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, extractors...)
	}
}

// New creates a JSON-formatted logger.
func New(opts ...Option) *slog.Logger {
	o := options{out: os.Stdout, level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&o)
	}

	handler := slog.NewJSONHandler(o.out, &slog.HandlerOptions{Level: o.level})
	return slog.New(NewLogHandlerDecorator(handler, o.extractors...))
}

// NewDiscard creates a no-op logger that drops all output.
// Use this as a default when logging is not configured.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
