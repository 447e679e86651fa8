package config

import "time"

// APIConfig holds game API client configuration
type APIConfig struct {
	// API token, sent as a bearer credential on every request
	Token string `mapstructure:"token" validate:"required"`

	// Account name, used for account-scoped endpoints (achievements)
	Account string `mapstructure:"account"`

	// Base URL for the game API
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Rate limiting settings, shared across all characters
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Request timeout
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	// Retry configuration
	Retry RetryConfig `mapstructure:"retry"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Maximum requests per second
	Requests int `mapstructure:"requests" validate:"min=1"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" validate:"min=1"`
}

// RetryConfig holds retry configuration for failed requests
type RetryConfig struct {
	// Maximum number of retry attempts
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=0"`

	// Base duration for exponential backoff
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}
