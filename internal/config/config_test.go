package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for env := range envKeys {
		t.Setenv(env, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
	assert.Equal(t, 10, c.BcryptCost)
	assert.True(t, c.CookieSecure)
	assert.False(t, c.SeedDemoUser)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, DriverJSON, c.Store.Driver)
	assert.Equal(t, "data/users.json", c.Store.Path)
	assert.Equal(t, 1.0, c.RateLimit.RPS)
	assert.Equal(t, 10, c.RateLimit.Burst)
	assert.Empty(t, c.JWTSecret)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
port: "9090"
token_ttl: 2h
bcrypt_cost: 12
seed_demo_user: true
store:
  driver: sqlite
  path: /var/lib/tripnosis/users.db
rate_limit:
  burst: 3
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	c, err := Load([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 2*time.Hour, c.TokenTTL)
	assert.Equal(t, 12, c.BcryptCost)
	assert.True(t, c.SeedDemoUser)
	assert.Equal(t, DriverSQLite, c.Store.Driver)
	assert.Equal(t, "/var/lib/tripnosis/users.db", c.Store.Path)
	assert.Equal(t, 3, c.RateLimit.Burst)
	assert.Equal(t, 1.0, c.RateLimit.RPS, "unset keys keep their defaults")
}

func TestLoad_MissingYAMLFile(t *testing.T) {
	clearEnv(t)

	_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\nbcrypt_cost: 12\n"), 0o600))

	t.Setenv("PORT", "7070")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("STORE_PATH", "/tmp/users.json")

	c, err := Load([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, "7070", c.Port)
	assert.Equal(t, 12, c.BcryptCost)
	assert.Equal(t, testSecret, c.JWTSecret)
	assert.False(t, c.CookieSecure)
	assert.Equal(t, 30*time.Minute, c.TokenTTL)
	assert.Equal(t, "/tmp/users.json", c.Store.Path)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7070")
	t.Setenv("STORE_DRIVER", "sqlite")

	c, err := Load([]string{"--port", "6060", "--store.path", "users.db", "--bcrypt_cost", "4"})
	require.NoError(t, err)

	assert.Equal(t, "6060", c.Port)
	assert.Equal(t, DriverSQLite, c.Store.Driver, "env applies where no flag is given")
	assert.Equal(t, "users.db", c.Store.Path)
	assert.Equal(t, 4, c.BcryptCost)
}

func TestLoad_UnknownFlag(t *testing.T) {
	clearEnv(t)

	_, err := Load([]string{"--nope"})
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		Port:       "8080",
		JWTSecret:  testSecret,
		TokenTTL:   time.Hour,
		BcryptCost: 10,
		LogLevel:   "info",
		Store:      StoreConfig{Driver: DriverJSON, Path: "users.json"},
		RateLimit:  RateLimitConfig{RPS: 1, Burst: 5},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "" }},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }},
		{"cost too low", func(c *Config) { c.BcryptCost = 3 }},
		{"cost too high", func(c *Config) { c.BcryptCost = 15 }},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }},
		{"empty path", func(c *Config) { c.Store.Path = "" }},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestSlogLevel(t *testing.T) {
	c := validConfig()
	c.LogLevel = "debug"

	level, err := c.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}
