// Package logging sets up the pager's zerolog loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServiceName is the default value of the "service" field.
const ServiceName = "category-pager"

// Config describes where and how the pager logs.
type Config struct {
	// Level is debug, info, warn (or warning) or error. Unknown levels log at info.
	Level string

	// Pretty switches from JSON lines to console output.
	Pretty bool

	// Service is attached to every entry as the "service" field when set.
	Service string

	// Output receives the logs when File is empty (default: os.Stderr).
	Output io.Writer

	// File, when set, receives the logs instead of Output. It is appended to.
	File string
}

// DefaultConfig returns JSON logging at info level to stderr.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Service: ServiceName,
		Output:  os.Stderr,
	}
}

// Setup installs the logger described by cfg as the global logger. The
// returned close function releases the log file and is never nil.
func Setup(cfg Config) (zerolog.Logger, func() error, error) {
	closeFn := func() error { return nil }

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("open log file: %w", err)
		}
		output = f
		closeFn = f.Close
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05", NoColor: cfg.File != ""}
	}

	level, _ := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	ctx := zerolog.New(output).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	log.Logger = ctx.Logger()

	return log.Logger, closeFn, nil
}

// ParseLevel maps a configured level name to a zerolog level. It reports
// false, and returns info, for anything but debug, info, warn, warning and
// error.
func ParseLevel(name string) (zerolog.Level, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level < zerolog.DebugLevel || level > zerolog.ErrorLevel {
		return zerolog.InfoLevel, false
	}
	return level, true
}

// ValidLevel reports whether name is accepted by ParseLevel.
func ValidLevel(name string) bool {
	_, ok := ParseLevel(name)
	return ok
}

// NewLogger returns the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Levels used across the pager:
//
//	debug  cache hits and misses, page fetches and prefetches, dropped
//	       results of abandoned pages, invalid page values
//	info   startup, Redis connection, warm runs
//	warn   retries, breaker state changes, cache errors, failed page loads
//	error  command failures after all retries, metrics server failures
//
// Common fields: component, resource, page, offset, limit, status,
// error_class, duration.
