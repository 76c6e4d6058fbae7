// Package duration parses and checks STS session durations.
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Limits accepted by AssumeRoleWithSAML.
const (
	Min     = 15 * time.Minute
	Max     = 12 * time.Hour
	Default = time.Hour
)

// Parse parses a session duration.
// Supports: "3600" (seconds), "60m" (minutes), "1h" (hours), "1h30m".
// An empty value means Default.
func Parse(durationStr string) (time.Duration, error) {
	durationStr = strings.TrimSpace(durationStr)
	if durationStr == "" {
		return Default, nil
	}

	// Try parsing as a Go duration first (e.g., "1h", "30m", "3600s")
	if d, err := time.ParseDuration(durationStr); err == nil {
		return d, nil
	}

	// Try parsing as seconds (e.g., "3600")
	if seconds, err := strconv.ParseInt(durationStr, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	return 0, fmt.Errorf("invalid duration format: %s (use format like '1h', '30m', or '3600')", durationStr)
}

// Format formats time.Duration in human-readable format
func Format(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	case minutes > 0 && seconds > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%ds", seconds)
}

// Validate checks if duration is within [Min, Max].
func Validate(d time.Duration) error {
	if d < Min {
		return fmt.Errorf("duration cannot be less than %s (specified: %s)", Format(Min), Format(d))
	}
	if d > Max {
		return fmt.Errorf("duration cannot exceed %s (specified: %s)", Format(Max), Format(d))
	}
	return nil
}

// Seconds returns d as whole seconds, the unit STS expects.
func Seconds(d time.Duration) int32 {
	return int32(d / time.Second)
}
