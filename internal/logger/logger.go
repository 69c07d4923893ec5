// Package logger wraps zerolog.Logger with the constructors and context
// helpers used throughout students-api.
//
// The HTTP layer attaches a request-scoped child logger (carrying the
// trace id) to every request context; handlers and the service layer fetch
// it back with FromContext or FromRequest.
package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

// New returns a *Logger configured for the given environment.
//
//	dev      human-readable console output, debug level
//	staging  JSON output, debug level
//	prod     JSON output, info level
//
// Anything unrecognised is treated as dev.
func New(env string) *Logger {
	return newWithWriter(env, os.Stdout)
}

func newWithWriter(env string, w io.Writer) *Logger {
	var (
		out   = w
		level = zerolog.DebugLevel
	)

	switch env {
	case "prod":
		level = zerolog.InfoLevel
	case "staging":
	default:
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(out).Level(level).With().
		Str("service", "students-api").
		Timestamp().
		Logger()

	return &Logger{l}
}

// Nop returns a *Logger that discards all output. Used in tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a new *Logger inheriting all fields of l.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// FromContext returns the logger stored in ctx by zerolog's WithContext.
// If none was attached, zerolog's default context logger is returned, so
// the result is never nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

// FromRequest is FromContext for r.Context().
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}
