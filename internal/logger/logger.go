package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger.
// format "console" gives human-readable output, anything else JSON lines.
func Init(service, level, format string) {
	InitWithWriter(os.Stderr, service, level, format)
}

// InitWithWriter is Init with an explicit output, used by tests.
func InitWithWriter(w io.Writer, service, level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", service).Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

// WithCorrelationID returns a context carrying a logger tagged with id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	l := log.Logger.With().Str("correlation_id", id).Logger()
	return l.WithContext(ctx)
}

// FromContext returns the request logger stored in ctx, or the global one.
func FromContext(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
