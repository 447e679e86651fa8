package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
api:
  token: test-token
characters:
  - name: alice
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.API.Token)
	assert.Equal(t, "https://api.artifactsmmo.com", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5, cfg.API.RateLimit.Requests)
	assert.Equal(t, 5, cfg.API.RateLimit.Burst)
	assert.Equal(t, 5, cfg.API.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.API.Retry.BackoffBase)

	assert.Equal(t, "artifacts-catalog.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Database.RefreshAfter)

	assert.Equal(t, "/tmp/artifacts-daemon.pid", cfg.Daemon.PIDFile)
	assert.Equal(t, "gear-state.json", cfg.Daemon.GearStatePath)
	assert.Equal(t, 30*time.Second, cfg.Daemon.ShutdownTimeout)

	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "localhost", cfg.Metrics.Host)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)

	require.Len(t, cfg.Characters, 1)
	char := cfg.Characters[0]
	assert.Equal(t, "alice", char.Name)
	assert.Equal(t, 3, char.MaxLosses)
	assert.Equal(t, 15, char.TaskBatchSize)
	assert.Equal(t, 15*time.Minute, char.RecipeBlock)
	assert.Equal(t, 15*time.Minute, char.OrderBoard.Lease)
	assert.Equal(t, 5*time.Minute, char.OrderBoard.BlockedRetry)
	assert.False(t, char.OrderBoard.Enabled)
}

func TestLoadConfigFullFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, `
api:
  token: test-token
  account: my-account
  rate_limit:
    requests: 10
    burst: 20
metrics:
  enabled: true
  port: 9191
logging:
  level: debug
  format: text
exchange:
  targets:
    lich_crown: 1
characters:
  - name: alice
    skills: [mining, weaponcrafting]
    weights:
      mining: 2.5
    goals:
      gather: 40
    blacklisted_recipes: [wooden_staff]
    max_losses: 5
    accept_tasks: true
    order_board:
      enabled: true
      create_orders: true
      fulfill_orders: true
      lease: 10m
    potions:
      elite:
        enabled: true
        target_quantity: 25
  - name: bob
`))
	require.NoError(t, err)

	assert.Equal(t, "my-account", cfg.API.Account)
	assert.Equal(t, 10, cfg.API.RateLimit.Requests)
	assert.Equal(t, 20, cfg.API.RateLimit.Burst)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9191, cfg.Metrics.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, map[string]int{"lich_crown": 1}, cfg.Exchange.Targets)

	require.Len(t, cfg.Characters, 2)
	alice := cfg.Characters[0]
	assert.Equal(t, []string{"mining", "weaponcrafting"}, alice.Skills)
	assert.Equal(t, 2.5, alice.Weights["mining"])
	assert.Equal(t, 40, alice.Goals["gather"])
	assert.Equal(t, []string{"wooden_staff"}, alice.BlacklistedRecipes)
	assert.Equal(t, 5, alice.MaxLosses)
	assert.True(t, alice.AcceptTasks)
	assert.True(t, alice.OrderBoard.Enabled)
	assert.Equal(t, 10*time.Minute, alice.OrderBoard.Lease)
	assert.Equal(t, 5*time.Minute, alice.OrderBoard.BlockedRetry)
	require.Contains(t, alice.Potions, "elite")
	assert.Equal(t, 25, alice.Potions["elite"].TargetQuantity)

	assert.Equal(t, []string{"alice", "bob"}, cfg.CharacterNames())
	_, ok := cfg.Character("bob")
	assert.True(t, ok)
	_, ok = cfg.Character("carol")
	assert.False(t, ok)
}

func TestLoadConfigTokenFromEnv(t *testing.T) {
	t.Setenv("API_TOKEN", "env-token")
	cfg, err := LoadConfig(writeConfigFile(t, `
characters:
  - name: alice
`))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.API.Token)
}

func TestLoadConfigUnknownKeys(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, `
api:
  token: test-token
telemetry:
  enabled: true
characters:
  - name: alice
    turbo_mode: true
`))
	require.NoError(t, err)

	keys := cfg.UnknownKeys()
	assert.Contains(t, keys, "telemetry")
	found := false
	for _, key := range keys {
		if strings.Contains(key, "turbo_mode") {
			found = true
		}
	}
	assert.True(t, found, "expected a key mentioning turbo_mode, got %v", keys)

	// A clean file reports nothing.
	cfg, err = LoadConfig(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)
	assert.Empty(t, cfg.UnknownKeys())
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		_, err := LoadConfig(writeConfigFile(t, `
characters:
  - name: alice
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Token")
	})

	t.Run("no characters", func(t *testing.T) {
		_, err := LoadConfig(writeConfigFile(t, `
api:
  token: test-token
`))
		require.Error(t, err)
	})

	t.Run("character without name", func(t *testing.T) {
		_, err := LoadConfig(writeConfigFile(t, `
api:
  token: test-token
characters:
  - skills: [mining]
`))
		require.Error(t, err)
	})

	t.Run("duplicate character names", func(t *testing.T) {
		_, err := LoadConfig(writeConfigFile(t, `
api:
  token: test-token
characters:
  - name: alice
  - name: alice
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configured more than once")
	})

	t.Run("metrics port out of range", func(t *testing.T) {
		_, err := LoadConfig(writeConfigFile(t, `
api:
  token: test-token
metrics:
  port: 80
characters:
  - name: alice
`))
		require.Error(t, err)
	})
}
