// Package logger provides leveled logging for the whole binary.
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}).With().Timestamp().Logger()

// ParseLevel converts a level name ("trace", "debug", "info", "warn",
// "error", "fatal", "panic") to a zerolog level.
func ParseLevel(name string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// SetLevel sets the global log level.
func SetLevel(level zerolog.Level) {
	log = log.Level(level)
}

// With returns the underlying logger for callers that want structured fields.
func With() zerolog.Context {
	return log.With()
}

// Debug logs a formatted debug message.
func Debug(format string, args ...any) {
	log.Debug().Msgf(format, args...)
}

// Info logs a formatted info message.
func Info(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

// Warn logs a formatted warning message.
func Warn(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

// Error logs a formatted error message.
func Error(format string, args ...any) {
	log.Error().Msgf(format, args...)
}
