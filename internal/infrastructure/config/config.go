package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	API        APIConfig         `mapstructure:"api"`
	Database   DatabaseConfig    `mapstructure:"database"`
	Daemon     DaemonConfig      `mapstructure:"daemon"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
	Logging    LoggingConfig     `mapstructure:"logging"`
	Exchange   ExchangeConfig    `mapstructure:"exchange"`
	Characters []CharacterConfig `mapstructure:"characters" validate:"required,min=1,dive"`

	unknownKeys []string
}

// UnknownKeys lists config keys present in the sources but matching no known
// field, sorted. Callers log them as warnings; a typoed option should never
// be silently dropped.
func (c *Config) UnknownKeys() []string {
	return c.unknownKeys
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	// Set config file details
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/artifacts")
	}

	// Enable environment variable reading
	v.SetEnvPrefix("ARTIFACTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional - don't error if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we'll use env vars and defaults
	}

	// Special handling for API_TOKEN environment variable
	// This allows users to set the token without the ARTIFACTS_ prefix
	if token := os.Getenv("API_TOKEN"); token != "" {
		v.Set("api.token", token)
	}

	// Create config struct and unmarshal, tracking keys no field consumed
	var cfg Config
	var meta mapstructure.Metadata
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.Metadata = &meta
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.unknownKeys = append(cfg.unknownKeys, meta.Unused...)
	sort.Strings(cfg.unknownKeys)

	// Apply defaults for any missing values
	SetDefaults(&cfg)

	// Validate configuration
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// MustLoadConfig loads configuration and panics on error (for use in main.go)
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Character returns the config block for one character name
func (c *Config) Character(name string) (CharacterConfig, bool) {
	for _, char := range c.Characters {
		if char.Name == name {
			return char, true
		}
	}
	return CharacterConfig{}, false
}

// CharacterNames returns the configured character names in file order
func (c *Config) CharacterNames() []string {
	names := make([]string, 0, len(c.Characters))
	for _, char := range c.Characters {
		names = append(names, char.Name)
	}
	return names
}
