package config

// MetricsConfig holds the ops HTTP server configuration. The server exposes
// the Prometheus endpoint plus the character status surface.
type MetricsConfig struct {
	// Enabled controls whether the ops server is started
	Enabled bool `mapstructure:"enabled"`

	// Port for the ops HTTP server
	Port int `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`

	// Host to bind the ops HTTP server (default: localhost for security)
	Host string `mapstructure:"host"`

	// Path for the metrics endpoint (default: /metrics)
	Path string `mapstructure:"path"`
}
