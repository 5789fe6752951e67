// Package config reads service settings from a YAML file, with environment
// variables taking precedence (key "sms.twilio.auth_token" is overridden by
// SMS_TWILIO_AUTH_TOKEN).
package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values scaled to a duration unit.
type TimeConfig interface {
	// GetSecond reads key as a number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads key as a number of minutes.
	GetMinute(key string) time.Duration
	// GetHour reads key as a number of hours.
	GetHour(key string) time.Duration
}

// Config is the read-only view of the service configuration.
// Missing keys read as zero values; use IsSet to tell them apart.
type Config interface {
	io.Closer
	TimeConfig

	IsSet(key string) bool
	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetArray reads a comma separated value, dropping empty elements.
	GetArray(key string) []string
}
