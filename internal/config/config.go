// Package config loads server settings from defaults, an optional YAML file,
// environment variables and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Store drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Config holds runtime settings for the Tripnosis auth server.
type Config struct {
	Port         string          `koanf:"port"`
	JWTSecret    string          `koanf:"jwt_secret"`
	TokenTTL     time.Duration   `koanf:"token_ttl"`
	BcryptCost   int             `koanf:"bcrypt_cost"`
	CookieSecure bool            `koanf:"cookie_secure"`
	SeedDemoUser bool            `koanf:"seed_demo_user"`
	LogLevel     string          `koanf:"log_level"`
	Store        StoreConfig     `koanf:"store"`
	RateLimit    RateLimitConfig `koanf:"rate_limit"`
}

// StoreConfig selects and locates the user store.
type StoreConfig struct {
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
}

// RateLimitConfig bounds register/login attempts per client IP.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

var defaults = map[string]any{
	"port":             "8080",
	"token_ttl":        24 * time.Hour,
	"bcrypt_cost":      10,
	"cookie_secure":    true,
	"seed_demo_user":   false,
	"log_level":        "info",
	"store.driver":     DriverJSON,
	"store.path":       "data/users.json",
	"rate_limit.rps":   1.0,
	"rate_limit.burst": 10,
}

// envKeys maps environment variables to config keys.
var envKeys = map[string]string{
	"PORT":             "port",
	"JWT_SECRET":       "jwt_secret",
	"TOKEN_TTL":        "token_ttl",
	"BCRYPT_COST":      "bcrypt_cost",
	"COOKIE_SECURE":    "cookie_secure",
	"SEED_DEMO_USER":   "seed_demo_user",
	"LOG_LEVEL":        "log_level",
	"STORE_DRIVER":     "store.driver",
	"STORE_PATH":       "store.path",
	"RATE_LIMIT_RPS":   "rate_limit.rps",
	"RATE_LIMIT_BURST": "rate_limit.burst",
}

// Load builds a Config from defaults, the YAML file named by --config,
// environment variables and the remaining flags in args.
func Load(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	k := koanf.New(".")
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	for env, key := range envKeys {
		if val, ok := os.LookupEnv(env); ok && val != "" {
			if err := k.Set(key, val); err != nil {
				return nil, fmt.Errorf("set %s from %s: %w", key, env, err)
			}
		}
	}

	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("tripnosis", pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.String("port", "8080", "HTTP listen port")
	fs.Duration("token_ttl", 24*time.Hour, "session token lifetime")
	fs.Int("bcrypt_cost", 10, "bcrypt work factor (4-14)")
	fs.Bool("cookie_secure", true, "mark the auth cookie Secure")
	fs.Bool("seed_demo_user", false, "insert the demo account on startup (development only)")
	fs.String("log_level", "info", "log level: debug, info, warn, error")
	fs.String("store.driver", DriverJSON, "user store driver: json or sqlite")
	fs.String("store.path", "data/users.json", "user store file path")
	fs.Float64("rate_limit.rps", 1, "register/login requests per second per client")
	fs.Int("rate_limit.burst", 10, "register/login burst per client")
	return fs
}

// Validate checks the settings the server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("bcrypt_cost must be between 4 and 14, got %d", c.BcryptCost))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token_ttl must be positive, got %s", c.TokenTTL))
	}
	if c.Store.Driver != DriverJSON && c.Store.Driver != DriverSQLite {
		errs = append(errs, fmt.Errorf("store.driver must be %q or %q, got %q", DriverJSON, DriverSQLite, c.Store.Driver))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if c.RateLimit.Burst < 1 {
		errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1, got %d", c.RateLimit.Burst))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
