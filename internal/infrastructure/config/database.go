package config

import "time"

// DatabaseConfig holds the local catalog cache configuration. The cache is a
// SQLite file holding the game's static content so restarts do not refetch
// the full catalog.
type DatabaseConfig struct {
	// SQLite file path
	Path string `mapstructure:"path" validate:"required"`

	// RefreshAfter is how old the cached catalog may be before it is
	// refetched from the API on startup
	RefreshAfter time.Duration `mapstructure:"refresh_after"`
}
