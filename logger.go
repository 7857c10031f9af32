package halcyon

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is used to log information generated at runtime. It keeps the
// shape of the teacher framework's own Logger (level methods plus a
// settable Output), but is backed by zerolog instead of a hand-rolled
// text/template formatter (SPEC_FULL.md §4.11) — the structured-logging
// library the rest of the retrieval pack reaches for the same concern.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger returns a Logger writing JSON-structured records to w at the
// given minimum level ("debug", "info", "warn", "error", or "fatal"; an
// unrecognized level defaults to "info").
func NewLogger(w io.Writer, level string) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{zl: zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()}
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Debugf logs a DEBUG level record.
func (l *Logger) Debugf(format string, args ...any) { l.zl.Debug().Msgf(format, args...) }

// Infof logs an INFO level record.
func (l *Logger) Infof(format string, args ...any) { l.zl.Info().Msgf(format, args...) }

// Warnf logs a WARN level record.
func (l *Logger) Warnf(format string, args ...any) { l.zl.Warn().Msgf(format, args...) }

// Errorf logs an ERROR level record.
func (l *Logger) Errorf(format string, args ...any) { l.zl.Error().Msgf(format, args...) }

// WithField returns a derived Logger that attaches key=value to every
// subsequent record, used by built-in middlewares (e.g. RequestLogger) to
// enrich the log records of a single request's lifetime.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}
