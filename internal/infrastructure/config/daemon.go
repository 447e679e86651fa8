package config

import "time"

// DaemonConfig holds controller process configuration
type DaemonConfig struct {
	// PID file location
	PIDFile string `mapstructure:"pid_file"`

	// Path of the persisted gear plan state file
	GearStatePath string `mapstructure:"gear_state_path" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
