// Package logging builds the zerolog loggers used by the compiler and CLI.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "PDLGEN_LOG_LEVEL"
	EnvLogJSON    = "PDLGEN_LOG_JSON"
	EnvLogNoColor = "PDLGEN_LOG_NOCOLOR"
)

// Config selects the level and output format.
type Config struct {
	Level   zerolog.Level
	JSON    bool
	NoColor bool
}

// DefaultConfig logs at info level in console format.
func DefaultConfig() Config {
	return Config{Level: zerolog.InfoLevel}
}

// New returns a logger writing to w. Environment variables override cfg.
func New(app string, cfg Config, w io.Writer) zerolog.Logger {
	applyEnvOverrides(&cfg)
	output := w
	if !cfg.JSON {
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		}
	}
	return zerolog.New(output).Level(cfg.Level).With().Timestamp().Str("app", app).Logger()
}

// Nop discards everything.
func Nop() zerolog.Logger { return zerolog.Nop() }

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogJSON)); ok {
		cfg.JSON = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
}

// ParseLevel maps a level name to a zerolog level. ok is false for an
// empty or unknown name.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
