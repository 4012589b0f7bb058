// Package config loads controller settings from an optional YAML file, a local
// .env file and environment variables, in increasing order of precedence.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported storage backends.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration values for the application.
type Config struct {
	// Storage backend, "postgres" or "sqlite"
	StoreDriver string

	// Database connection string, required for postgres
	DatabaseURL string

	// Database file used by the sqlite driver
	SQLitePath string

	// Apply pending schema migrations on startup
	AutoMigrate bool

	// HTTP server port for the controller
	HTTPPort int

	// Business rules
	MinRestPeriod  time.Duration
	MinShiftLength time.Duration
	MaxShiftLength time.Duration

	// Requests per second allowed per client, 0 disables limiting
	RateLimit      float64
	RateLimitBurst int

	// OTLP gRPC collector address; tracing is disabled when empty
	OTELEndpoint string

	LogLevel string
}

// env maps config keys to the environment variables that override them.
var env = map[string]string{
	"store_driver":     "STORE_DRIVER",
	"database_url":     "DATABASE_URL",
	"sqlite_path":      "SQLITE_PATH",
	"auto_migrate":     "AUTO_MIGRATE",
	"http_port":        "PORT",
	"min_rest_period":  "MIN_REST_PERIOD",
	"min_shift_length": "MIN_SHIFT_LENGTH",
	"max_shift_length": "MAX_SHIFT_LENGTH",
	"rate_limit":       "RATE_LIMIT",
	"rate_limit_burst": "RATE_LIMIT_BURST",
	"otel_endpoint":    "OTEL_EXPORTER_OTLP_ENDPOINT",
	"log_level":        "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store_driver", DriverPostgres)
	v.SetDefault("sqlite_path", "shiftplane.db")
	v.SetDefault("auto_migrate", true)
	v.SetDefault("http_port", 6161)
	v.SetDefault("min_rest_period", 6*time.Hour)
	v.SetDefault("min_shift_length", 2*time.Hour)
	v.SetDefault("max_shift_length", 8*time.Hour)
	v.SetDefault("rate_limit", 50.0)
	v.SetDefault("rate_limit_burst", 100)
	v.SetDefault("otel_endpoint", "")
	v.SetDefault("log_level", "info")
}

// Load reads configuration. path names a YAML file and may be empty; a .env
// file in the working directory is loaded when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	v := viper.New()
	setDefaults(v)
	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return nil, errors.Wrapf(err, "failed to bind %s", name)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	cfg := &Config{
		StoreDriver:    strings.ToLower(strings.TrimSpace(v.GetString("store_driver"))),
		DatabaseURL:    v.GetString("database_url"),
		SQLitePath:     v.GetString("sqlite_path"),
		AutoMigrate:    v.GetBool("auto_migrate"),
		HTTPPort:       v.GetInt("http_port"),
		MinRestPeriod:  v.GetDuration("min_rest_period"),
		MinShiftLength: v.GetDuration("min_shift_length"),
		MaxShiftLength: v.GetDuration("max_shift_length"),
		RateLimit:      v.GetFloat64("rate_limit"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),
		OTELEndpoint:   v.GetString("otel_endpoint"),
		LogLevel:       v.GetString("log_level"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required (env: DATABASE_URL)")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite_path is required (env: SQLITE_PATH)")
		}
	default:
		return errors.Newf("invalid store_driver %q: must be %s or %s", c.StoreDriver, DriverPostgres, DriverSQLite)
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return errors.Newf("invalid http_port %d", c.HTTPPort)
	}
	if c.MinRestPeriod < 0 {
		return errors.Newf("min_rest_period must not be negative, got %s", c.MinRestPeriod)
	}
	if c.MinShiftLength <= 0 || c.MaxShiftLength < c.MinShiftLength {
		return errors.Newf("invalid shift length bounds: min %s, max %s", c.MinShiftLength, c.MaxShiftLength)
	}
	if c.RateLimit < 0 || c.RateLimitBurst < 0 {
		return errors.New("rate_limit and rate_limit_burst must not be negative")
	}
	return nil
}
