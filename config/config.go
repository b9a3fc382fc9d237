/*
Package config loads server configuration.

LAYERS (highest precedence last):
  1. Built-in defaults
  2. Optional YAML file (-config flag)
  3. Environment variables with the PAYROLL_ prefix

  PAYROLL_SERVER_PORT            -> server.port
  PAYROLL_SERVER_ALLOWED_ORIGINS -> server.allowed_origins (comma separated)
  PAYROLL_DATABASE_PATH          -> database.path
  PAYROLL_PAYROLL_CHECK_INTERVAL -> payroll.check_interval

EXAMPLE FILE:
  server:
    port: 8080
    allowed_origins: ["http://localhost:5173"]
  database:
    path: ./data/payroll.db
  log:
    level: debug
    format: text
  payroll:
    schedule_enabled: true
    check_interval: 30m
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PAYROLL_"

// =============================================================================
// CONFIG TYPES
// =============================================================================

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Payroll  PayrollConfig  `koanf:"payroll"`
}

type ServerConfig struct {
	Port           int           `koanf:"port"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	IdleTimeout    time.Duration `koanf:"idle_timeout"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// PayrollConfig controls the monthly payroll scheduler.
type PayrollConfig struct {
	ScheduleEnabled bool          `koanf:"schedule_enabled"`
	CheckInterval   time.Duration `koanf:"check_interval"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.port":            8080,
		"server.read_timeout":    "15s",
		"server.write_timeout":   "15s",
		"server.idle_timeout":    "60s",
		"server.allowed_origins": []string{"http://localhost:5173", "http://localhost:8080"},

		"database.path": "./data/payroll.db",

		"log.level":  "info",
		"log.format": "text",

		"payroll.schedule_enabled": true,
		"payroll.check_interval":   "1h",
	}
}

// =============================================================================
// LOAD
// =============================================================================

// Load builds the configuration. An empty path skips the YAML layer; a
// path that cannot be read is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	// Env names are matched against known keys first so that
	// PAYROLL_SERVER_READ_TIMEOUT maps to server.read_timeout and not to
	// server.read.timeout.
	envLookup := buildEnvLookup(k.Keys())
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			if koanfKey, ok := envLookup[key]; ok {
				return koanfKey, value
			}
			return strings.ReplaceAll(key, "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func buildEnvLookup(keys []string) map[string]string {
	lookup := make(map[string]string, len(keys))
	for _, key := range keys {
		lookup[strings.ReplaceAll(key, ".", "_")] = key
	}
	return lookup
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks all values and returns every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	if c.Server.IdleTimeout <= 0 {
		errs = append(errs, errors.New("server.idle_timeout must be positive"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path must not be empty"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format))
	}

	if c.Payroll.ScheduleEnabled && c.Payroll.CheckInterval <= 0 {
		errs = append(errs, errors.New("payroll.check_interval must be positive when the schedule is enabled"))
	}

	return errors.Join(errs...)
}
