// Package config provides configuration helpers for go-kinesio commands.
package config

import (
	"os"
	"strconv"
	"time"
)

// Default session configuration.
const (
	DefaultFrameRate       = 30.0
	DefaultSessionDuration = 10 * time.Second
)

// FrameRate returns the host frame rate from KINESIO_FRAME_RATE.
// Falls back to the default if not set or unparseable.
func FrameRate() float64 {
	if v := os.Getenv("KINESIO_FRAME_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && rate > 0 {
			return rate
		}
	}
	return DefaultFrameRate
}

// SessionDuration returns the demo session length from KINESIO_SESSION_SECONDS.
func SessionDuration() time.Duration {
	if v := os.Getenv("KINESIO_SESSION_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return DefaultSessionDuration
}

// LogLevel returns the log level from KINESIO_LOG_LEVEL or "info".
func LogLevel() string {
	if level := os.Getenv("KINESIO_LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}
