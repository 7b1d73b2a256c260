// Package logging provides the zerolog-based logger shared by every
// command invocation. All diagnostics (parse skips, write failures,
// command tracing) go to stderr; stdout is reserved for the single JSON
// result a command prints.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the logging settings resolved by the config package.
type Config struct {
	// Level is the minimum level: debug, info, warn, error. Default info.
	Level string `koanf:"level"`

	// Format is json or console. Default console; a one-shot CLI is read
	// by humans far more often than by collectors.
	Format string `koanf:"format"`
}

var log = newLogger(Config{Level: "info", Format: "console"}, os.Stderr)

// Init replaces the package logger. Called once at command startup after
// the configuration is resolved.
func Init(cfg Config) {
	log = newLogger(cfg, os.Stderr)
}

// InitWithWriter is Init with an explicit sink, for tests.
func InitWithWriter(cfg Config, w io.Writer) {
	log = newLogger(cfg, w)
}

// Logger returns the configured logger.
func Logger() zerolog.Logger { return log }

// Debug starts a debug-level event on the package logger.
func Debug() *zerolog.Event { return log.Debug() }

// Info starts an info-level event on the package logger.
func Info() *zerolog.Event { return log.Info() }

// Warn starts a warn-level event on the package logger.
func Warn() *zerolog.Event { return log.Warn() }

// Error starts an error-level event on the package logger.
func Error() *zerolog.Event { return log.Error() }

func newLogger(cfg Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
