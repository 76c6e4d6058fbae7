package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fitbeard/okta-assume/internal/redact"
)

// DefaultLevel is used when no level is configured or the configured one is invalid.
const DefaultLevel = "WARN"

// New creates a logger whose output is masked by reg.
func New(w io.Writer, reg *redact.Registry) *log.Logger {
	return log.NewWithOptions(reg.Writer(w), log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           log.WarnLevel,
		Prefix:          "okta-assume",
	})
}

// ParseLevel converts DEBUG, INFO, WARN, WARNING or ERROR (any case) into a log level.
func ParseLevel(level string) (log.Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "":
		return log.WarnLevel, nil
	case "warning":
		normalized = "warn"
	case "debug", "info", "warn", "error":
	default:
		return log.WarnLevel, fmt.Errorf("invalid log level '%s' (supported: DEBUG, INFO, WARN, ERROR)", level)
	}
	return log.ParseLevel(normalized)
}

// Apply sets the level on logger and, when outputFile is not empty, redirects
// it to that file in append mode. The returned closer must be closed when
// the run ends; it is a no-op when logging stays on the original sink.
func Apply(logger *log.Logger, reg *redact.Registry, level, outputFile string) (io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		logger.Warn("Log level reset", "level", DefaultLevel, "error", err)
	}
	logger.SetLevel(lvl)

	if outputFile == "" {
		return io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(outputFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output file '%s': %w", outputFile, err)
	}
	logger.SetOutput(reg.Writer(f))
	return f, nil
}
