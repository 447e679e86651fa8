package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// API defaults
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.artifactsmmo.com"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.API.RateLimit.Requests == 0 {
		cfg.API.RateLimit.Requests = 5
	}
	if cfg.API.RateLimit.Burst == 0 {
		cfg.API.RateLimit.Burst = 5
	}
	if cfg.API.Retry.MaxAttempts == 0 {
		cfg.API.Retry.MaxAttempts = 5
	}
	if cfg.API.Retry.BackoffBase == 0 {
		cfg.API.Retry.BackoffBase = 1 * time.Second
	}

	// Database defaults
	if cfg.Database.Path == "" {
		cfg.Database.Path = "artifacts-catalog.db"
	}
	if cfg.Database.RefreshAfter == 0 {
		cfg.Database.RefreshAfter = 24 * time.Hour
	}

	// Daemon defaults
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/artifacts-daemon.pid"
	}
	if cfg.Daemon.GearStatePath == "" {
		cfg.Daemon.GearStatePath = "gear-state.json"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 30 * time.Second
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Per-character defaults
	for i := range cfg.Characters {
		char := &cfg.Characters[i]
		if char.MaxLosses == 0 {
			char.MaxLosses = 3
		}
		if char.TaskBatchSize == 0 {
			char.TaskBatchSize = 15
		}
		if char.RecipeBlock == 0 {
			char.RecipeBlock = 15 * time.Minute
		}
		if char.OrderBoard.Lease == 0 {
			char.OrderBoard.Lease = 15 * time.Minute
		}
		if char.OrderBoard.BlockedRetry == 0 {
			char.OrderBoard.BlockedRetry = 5 * time.Minute
		}
	}
}
