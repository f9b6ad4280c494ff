// Package config loads and validates application configuration from
// defaults, an optional YAML file, and RECALL_-prefixed environment
// variables, in increasing order of precedence.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Review   ReviewConfig   `mapstructure:"review"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains the settings needed to verify bearer tokens issued
// by the external auth service. This service never issues tokens itself.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// ReviewConfig contains the review engine's tunables. The SRS interval
// settings default to the standard SM-2 ladder; they exist so a deployment
// can soften or harden the schedule without a code change.
type ReviewConfig struct {
	QueueLimit         int     `mapstructure:"queue_limit"          validate:"required,gt=0"`
	SessionTTLMinutes  int     `mapstructure:"session_ttl_minutes"  validate:"required,gt=0"`
	MinEaseFactor      float64 `mapstructure:"min_ease_factor"      validate:"omitempty,gte=1"`
	FirstIntervalDays  int     `mapstructure:"first_interval_days"  validate:"omitempty,gt=0"`
	SecondIntervalDays int     `mapstructure:"second_interval_days" validate:"omitempty,gt=0"`
	LapseIntervalDays  int     `mapstructure:"lapse_interval_days"  validate:"omitempty,gt=0"`
}
